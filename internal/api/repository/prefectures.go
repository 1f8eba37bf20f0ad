package repository

import (
	"strconv"
	"strings"

	"gorm.io/gorm/clause"
)

// Prefectures lists Japan's 47 prefectures from north to south.
var Prefectures = []string{
	"北海道",
	"青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県",
	"岐阜県", "静岡県", "愛知県", "三重県",
	"滋賀県", "京都府", "大阪府", "兵庫県", "奈良県", "和歌山県",
	"鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県",
	"福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県",
	"沖縄県",
}

// unknown prefectures sort after every listed one
const unknownPrefectureOrdinal = 999

// prefectureOrder orders by prefecture ordinal, then name, then id.
// Ordinals are inlined so postgres does not type them as text.
// It must be the only ORDER BY of a statement: an OrderBy expression
// replaces any other order columns.
func prefectureOrder() clause.OrderBy {
	var b strings.Builder
	vars := make([]interface{}, 0, len(Prefectures))
	b.WriteString("CASE aquariums.prefecture")
	for i, p := range Prefectures {
		b.WriteString(" WHEN ? THEN " + strconv.Itoa(i))
		vars = append(vars, p)
	}
	b.WriteString(" ELSE " + strconv.Itoa(unknownPrefectureOrdinal) + " END ASC, aquariums.name ASC, aquariums.id ASC")

	return clause.OrderBy{Expression: clause.Expr{SQL: b.String(), Vars: vars, WithoutParentheses: true}}
}

// idOrder keeps the order of ids, rows not in ids go last.
func idOrder(ids []int64) clause.OrderBy {
	var b strings.Builder
	b.WriteString("CASE aquariums.id")
	for i, id := range ids {
		b.WriteString(" WHEN " + strconv.FormatInt(id, 10) + " THEN " + strconv.Itoa(i))
	}
	b.WriteString(" ELSE " + strconv.Itoa(len(ids)) + " END ASC, aquariums.id ASC")

	return clause.OrderBy{Expression: clause.Expr{SQL: b.String(), WithoutParentheses: true}}
}
