package topborrowed

import (
	"github.com/alexandrebha/cybook/circulation"
)

// Project joins the store ranking with the resolved metadata. Rows without metadata are reported in Dropped.
func Project(counts []circulation.BorrowCount, metadata map[circulation.BookID]circulation.Metadata, query Query) Ranking {
	ranking := Ranking{
		WindowDays: query.WindowDays,
		Books:      make([]RankedBook, 0, len(counts)),
		Dropped:    make([]circulation.BookID, 0),
	}

	for _, count := range counts {
		m, ok := metadata[count.BookID]
		if !ok {
			ranking.Dropped = append(ranking.Dropped, count.BookID)
			continue
		}

		ranking.Books = append(ranking.Books, RankedBook{
			Rank:     len(ranking.Books) + 1,
			BookID:   count.BookID,
			Count:    count.Count,
			Metadata: m,
		})
	}

	return ranking
}
