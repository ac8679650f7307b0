package postgresengine

import (
	"context"
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/circulation/postgresengine/internal/adapters"
)

// TopBorrowed counts the loans created in the windowDays days before now, returned or not, per book.
// Rows are ordered by count descending, then by book identifier, and truncated to limit.
// Returns circulation.ErrInvalidArgument if windowDays or limit is not positive.
func (e *Engine) TopBorrowed(ctx context.Context, windowDays, limit int, now time.Time) ([]circulation.BorrowCount, error) {
	obs, ctx := e.observe(ctx, operationTopBorrowed)

	if windowDays <= 0 || limit <= 0 {
		obs.failure(circulation.ErrInvalidArgument)
		return nil, circulation.ErrInvalidArgument
	}

	windowStart := circulation.ToStoreTime(circulation.WindowStart(now, windowDays))

	ranking, err := collect(ctx, e, e.db, operationTopBorrowed, e.selectTopBorrowed(windowStart, limit), scanBorrowCount)
	if err != nil {
		obs.failure(err)
		return nil, err
	}

	obs.successWithRows(len(ranking), logAttrWindowDays, windowDays)

	return ranking, nil
}

// RecentLoanCount counts the loans of the book created in the windowDays days before now.
func (e *Engine) RecentLoanCount(ctx context.Context, bookID circulation.BookID, windowDays int, now time.Time) (int, error) {
	obs, ctx := e.observe(ctx, operationRecentLoanCount)

	if windowDays <= 0 {
		obs.failure(circulation.ErrInvalidArgument)
		return 0, circulation.ErrInvalidArgument
	}

	windowStart := circulation.ToStoreTime(circulation.WindowStart(now, windowDays))

	count, err := first(ctx, e, e.db, operationRecentLoanCount, e.countLoansSince(bookID, windowStart), scanCount, circulation.ErrStoreUnavailable)
	if err != nil {
		obs.failure(err)
		return 0, err
	}

	obs.success(logAttrBookID, bookID, logAttrCount, count)

	return count, nil
}

func scanBorrowCount(rows adapters.DBRows) (circulation.BorrowCount, error) {
	var row circulation.BorrowCount
	var count int64

	if err := rows.Scan(&row.BookID, &count); err != nil {
		return circulation.BorrowCount{}, err
	}

	row.Count = int(count)

	return row, nil
}
