package cli

import (
	"fmt"

	"github.com/hupe1980/deltadb/model"
	"github.com/hupe1980/deltadb/schema"
)

// Item is the document type of the CLI workloads.
type Item struct {
	ID    int64   `json:"id"`
	Group string  `json:"group"`
	Score float64 `json:"score"`
}

func itemScore(it Item) float64 { return it.Score }

func itemsSchema(layout model.Layout) schema.Table[Item] {
	s := schema.Table[Item]{
		Name: "items",
		Indexes: []schema.Index[Item]{
			{Property: "id", Key: func(it Item) any { return it.ID }},
			{Property: "group", Key: func(it Item) any { return it.Group }},
		},
		Layout: layout,
	}
	if layout == model.LayoutColumnar {
		s.Columns = []schema.Column[Item]{
			{Name: "score", Kind: model.KindFloat64, Value: func(it Item) any { return it.Score }},
		}
	}
	return s
}

// newItem derives a deterministic document from its sequence number.
func newItem(seq, groups int) Item {
	return Item{
		ID:    int64(seq),
		Group: fmt.Sprintf("g%d", seq%max(groups, 1)),
		Score: float64(seq%100) / 10,
	}
}
