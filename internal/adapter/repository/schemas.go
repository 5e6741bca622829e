package repository

import "github.com/eslsoft/wordpace/pkg/filterexpr"

// listWordRecordsSchema whitelists the filter and order surface of the
// word-record listing. Keys are the API-facing names; the column maps
// below translate them to SQL.
var listWordRecordsSchema = filterexpr.Schema{
	Fields: map[string]filterexpr.FieldRule{
		"word": {
			Kind: filterexpr.KindString,
			Ops:  []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpSW, filterexpr.OpIN},
		},
		"status": {
			Kind: filterexpr.KindString,
			Ops:  []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpIN},
		},
		"language": {
			Kind: filterexpr.KindString,
			Ops:  []filterexpr.Op{filterexpr.OpEQ},
		},
		"level": {
			Kind: filterexpr.KindNumber,
			Ops:  []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpGTE, filterexpr.OpLTE},
		},
		"mastery": {
			Kind: filterexpr.KindNumber,
			Ops:  []filterexpr.Op{filterexpr.OpGTE, filterexpr.OpLTE},
		},
		"next_review_at": {
			Kind: filterexpr.KindTimestamp,
			Ops:  []filterexpr.Op{filterexpr.OpGTE, filterexpr.OpLTE},
		},
	},
	Order: filterexpr.OrderSchema{
		Default:  filterexpr.OrderKey{Key: "next_review_at"},
		TieBreak: filterexpr.OrderKey{Key: "id"},
		Allowed:  []string{"word", "level", "mastery", "next_review_at", "created_at", "updated_at", "id"},
	},
}

var wordRecordFilterColumns = map[string]string{
	"word":           "word",
	"status":         "status",
	"language":       "language",
	"level":          "progression_level",
	"mastery":        "mastery_score",
	"next_review_at": "next_review_at",
}

var wordRecordOrderColumns = map[string]string{
	"word":           "word",
	"level":          "progression_level",
	"mastery":        "mastery_score",
	"next_review_at": "next_review_at",
	"created_at":     "created_at",
	"updated_at":     "updated_at",
	"id":             "id",
}
