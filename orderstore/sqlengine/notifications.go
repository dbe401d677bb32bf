package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
)

// FetchPendingNotifications returns up to limit outbox records that were neither sent nor abandoned,
// oldest first, regardless of their next attempt time.
func (s OrderStore) FetchPendingNotifications(ctx context.Context, limit int) ([]orderstore.StorableNotification, error) {
	return s.fetchNotifications(ctx, limit)
}

// FetchDueNotifications returns up to limit pending outbox records whose next attempt is not after now,
// oldest first. Records waiting out a backoff do not occupy the batch.
// The relay is expected to run as a single instance per database.
func (s OrderStore) FetchDueNotifications(ctx context.Context, limit int, now time.Time) ([]orderstore.StorableNotification, error) {
	return s.fetchNotifications(ctx, limit, goqu.Or(
		goqu.C(colNextAttemptAt).IsNull(),
		goqu.C(colNextAttemptAt).Lte(utc(now)),
	))
}

func (s OrderStore) fetchNotifications(
	ctx context.Context,
	limit int,
	conditions ...goqu.Expression,
) (notifications []orderstore.StorableNotification, err error) {

	observer, ctx := s.observe(ctx, logActionOutboxFetch, nil)
	defer func() { observer.finish(err) }()

	if limit < 1 {
		limit = 1
	}

	conditions = append(conditions, goqu.C(colSentAt).IsNull(), goqu.C(colAbandonedAt).IsNull())

	stmt := s.builder().
		From(s.notificationsTable).
		Select(colID, colEventID, colOrderID, colKind, colRecipient, colPayload, colAttempts, colLastError, colCreatedAt, colNextAttemptAt).
		Where(conditions...).
		Order(goqu.C(colID).Asc()).
		Limit(uint(limit)).
		Prepared(s.prepared)

	rows, err := s.query(ctx, s.db, logActionOutboxFetch, stmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(ctx, rows)

	notifications = make([]orderstore.StorableNotification, 0)

	for rows.Next() {
		var n orderstore.StorableNotification
		var lastError sql.NullString
		var nextAttemptAt sql.NullTime

		scanErr := rows.Scan(&n.ID, &n.EventID, &n.OrderID, &n.Kind, &n.Recipient, &n.PayloadJSON, &n.Attempts, &lastError, &n.CreatedAt, &nextAttemptAt)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(orderstore.ErrScanningDBRowFailed, scanErr)
		}

		n.LastError = stringPtr(lastError)
		n.CreatedAt = n.CreatedAt.UTC()
		if nextAttemptAt.Valid {
			at := nextAttemptAt.Time.UTC()
			n.NextAttemptAt = &at
		}

		notifications = append(notifications, n)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(orderstore.ErrQueryingOrdersFailed, rowsErr)
	}

	return notifications, nil
}

// MarkNotificationSent records the successful dispatch of an outbox record.
func (s OrderStore) MarkNotificationSent(ctx context.Context, id int64, sentAt time.Time) (err error) {
	observer, ctx := s.observe(ctx, logActionOutboxMark, nil)
	defer func() { observer.finish(err) }()

	stmt := s.builder().
		Update(s.notificationsTable).
		Set(goqu.Record{colSentAt: utc(sentAt), colLastError: nil}).
		Where(goqu.C(colID).Eq(id)).
		Prepared(s.prepared)

	_, err = s.exec(ctx, s.db, logActionOutboxMark, stmt)

	return err
}

// MarkNotificationFailed increments the attempt counter of an outbox record, stores the failure and
// when the record is due again. A non-nil abandonedAt stops further dispatch attempts.
func (s OrderStore) MarkNotificationFailed(
	ctx context.Context,
	id int64,
	failure string,
	nextAttemptAt time.Time,
	abandonedAt *time.Time,
) (err error) {

	observer, ctx := s.observe(ctx, logActionOutboxMark, nil)
	defer func() { observer.finish(err) }()

	stmt := s.builder().
		Update(s.notificationsTable).
		Set(goqu.Record{
			colAttempts:      goqu.L(colAttempts + " + 1"),
			colLastError:     failure,
			colNextAttemptAt: utc(nextAttemptAt),
			colAbandonedAt:   nullableTime(abandonedAt),
		}).
		Where(goqu.C(colID).Eq(id)).
		Prepared(s.prepared)

	_, err = s.exec(ctx, s.db, logActionOutboxMark, stmt)

	return err
}
