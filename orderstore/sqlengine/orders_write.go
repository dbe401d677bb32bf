package sqlengine

import (
	"context"
	"errors"
	"strconv"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/orderstore/sqlengine/internal/adapters"
)

// Create persists the order header, all its article snapshots, and the given outbox notifications
// in one transaction. Nothing is persisted if any part fails.
func (s OrderStore) Create(
	ctx context.Context,
	order orderstore.StorableOrder,
	notifications ...orderstore.StorableNotification,
) (err error) {

	observer, ctx := s.observe(ctx, logActionCreate, map[string]string{spanAttrOrderID: order.ID})
	defer func() { observer.finish(err) }()

	if err = order.Validate(); err != nil {
		return err
	}

	err = s.inTx(ctx, func(tx adapters.DBTx) error {
		if _, insertErr := s.exec(ctx, tx, logActionCreate, s.buildInsertOrder(order)); insertErr != nil {
			return insertErr
		}

		if _, insertErr := s.exec(ctx, tx, logActionCreate, s.buildInsertArticles(order)); insertErr != nil {
			return insertErr
		}

		return s.insertNotifications(ctx, tx, notifications)
	})
	if err != nil {
		return err
	}

	observer.increment(metricOrdersCreated, map[string]string{spanAttrOperation: logActionCreate})

	s.logOperation(
		ctx,
		logMsgOrderCreated,
		logAttrOrderID, order.ID,
		logAttrArticleCount, len(order.Articles),
		logAttrNotifications, len(notifications),
	)

	return nil
}

// UpdateStatus applies a compare-and-swap status change together with the given outbox notifications.
//
// The row is only updated if its status still equals update.ExpectedStatus. Otherwise it returns
// orderstore.ErrStateConflict, or orderstore.ErrOrderNotFound if the order does not exist.
func (s OrderStore) UpdateStatus(
	ctx context.Context,
	update orderstore.StatusUpdate,
	notifications ...orderstore.StorableNotification,
) (err error) {

	observer, ctx := s.observe(ctx, logActionUpdateStatus, map[string]string{spanAttrOrderID: update.OrderID})
	defer func() { observer.finish(err) }()

	err = s.inTx(ctx, func(tx adapters.DBTx) error {
		stmt := s.builder().
			Update(s.ordersTable).
			Set(goqu.Record{
				colStatus:         update.NewStatus,
				colTrackingNumber: nullable(update.TrackingNumber),
				colNotes:          nullable(update.Notes),
				colDeliveredAt:    nullableTime(update.DeliveredAt),
				colUpdatedAt:      utc(update.UpdatedAt),
			}).
			Where(goqu.Ex{colID: update.OrderID, colStatus: update.ExpectedStatus}).
			Prepared(s.prepared)

		rowsAffected, execErr := s.exec(ctx, tx, logActionUpdateStatus, stmt)
		if execErr != nil {
			return execErr
		}

		if rowsAffected == 0 {
			return s.classifyMissedRow(ctx, tx, update.OrderID, update.ExpectedStatus)
		}

		return s.insertNotifications(ctx, tx, notifications)
	})
	if err != nil {
		return err
	}

	s.logOperation(
		ctx,
		logMsgStatusUpdated,
		logAttrOrderID, update.OrderID,
		logAttrExpectedStatus, update.ExpectedStatus,
		logAttrNewStatus, update.NewStatus,
	)

	return nil
}

// Delete removes an order and its article snapshots, but only while its status equals expectedStatus.
// A mismatching status yields orderstore.ErrStateConflict.
func (s OrderStore) Delete(ctx context.Context, orderID string, expectedStatus string) (err error) {
	observer, ctx := s.observe(ctx, logActionDelete, map[string]string{spanAttrOrderID: orderID})
	defer func() { observer.finish(err) }()

	err = s.inTx(ctx, func(tx adapters.DBTx) error {
		deleteArticles := s.builder().
			Delete(s.articlesTable).
			Where(
				goqu.C(colOrderID).Eq(orderID),
				goqu.C(colOrderID).In(
					s.builder().From(s.ordersTable).
						Select(colID).
						Where(goqu.Ex{colID: orderID, colStatus: expectedStatus}),
				),
			).
			Prepared(s.prepared)

		if _, execErr := s.exec(ctx, tx, logActionDelete, deleteArticles); execErr != nil {
			return execErr
		}

		deleteOrder := s.builder().
			Delete(s.ordersTable).
			Where(goqu.Ex{colID: orderID, colStatus: expectedStatus}).
			Prepared(s.prepared)

		rowsAffected, execErr := s.exec(ctx, tx, logActionDelete, deleteOrder)
		if execErr != nil {
			return execErr
		}

		if rowsAffected == 0 {
			return s.classifyMissedRow(ctx, tx, orderID, expectedStatus)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logOperation(ctx, logMsgOrderDeleted, logAttrOrderID, orderID)

	return nil
}

// classifyMissedRow tells a missing order apart from one whose status moved on.
func (s OrderStore) classifyMissedRow(ctx context.Context, q adapters.Querier, orderID string, expectedStatus string) error {
	stmt := s.builder().
		From(s.ordersTable).
		Select(goqu.COUNT(colID).As(aliasCount)).
		Where(goqu.C(colID).Eq(orderID)).
		Prepared(s.prepared)

	count, err := s.scanCount(ctx, q, stmt)
	if err != nil {
		return err
	}

	if count == 0 {
		return orderstore.ErrOrderNotFound
	}

	s.logOperation(ctx, logMsgStateConflict, logAttrOrderID, orderID, logAttrExpectedStatus, expectedStatus)

	return orderstore.ErrStateConflict
}

func (s OrderStore) buildInsertOrder(order orderstore.StorableOrder) *goqu.InsertDataset {
	return s.builder().
		Insert(s.ordersTable).
		Rows(goqu.Record{
			colID:               order.ID,
			colCustomerID:       nullable(order.CustomerID),
			colFullName:         order.FullName,
			colEmail:            order.Email,
			colPhone:            order.Phone,
			colAddress:          order.Address,
			colCity:             order.City,
			colRegion:           order.Region,
			colDeliveryMethod:   order.DeliveryMethod,
			colDeliverySpeed:    order.DeliverySpeed,
			colSubtotal:         order.Subtotal,
			colDeliveryFee:      order.DeliveryFee,
			colTotal:            order.Total,
			colDeclaredSubtotal: nullable(order.DeclaredSubtotal),
			colStatus:           order.Status,
			colTrackingNumber:   nullable(order.TrackingNumber),
			colNotes:            nullable(order.Notes),
			colInvoiceURL:       nullable(order.InvoiceURL),
			colCreatedAt:        utc(order.CreatedAt),
			colUpdatedAt:        utc(order.UpdatedAt),
			colDeliveredAt:      nullableTime(order.DeliveredAt),
		}).
		Prepared(s.prepared)
}

func (s OrderStore) buildInsertArticles(order orderstore.StorableOrder) *goqu.InsertDataset {
	rows := make([]interface{}, 0, len(order.Articles))

	for i, article := range order.Articles {
		rows = append(rows, goqu.Record{
			colOrderID:      order.ID,
			colPosition:     i,
			colProductID:    article.ProductID,
			colProductName:  article.ProductName,
			colUnitPrice:    article.UnitPrice,
			colQuantity:     article.Quantity,
			colSize:         nullable(article.Size),
			colColor:        article.Color,
			colLineSubtotal: article.LineSubtotal,
		})
	}

	return s.builder().Insert(s.articlesTable).Rows(rows...).Prepared(s.prepared)
}

func (s OrderStore) insertNotifications(
	ctx context.Context,
	q adapters.Querier,
	notifications []orderstore.StorableNotification,
) error {

	if len(notifications) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(notifications))

	for _, n := range notifications {
		rows = append(rows, goqu.Record{
			colEventID:   n.EventID,
			colOrderID:   n.OrderID,
			colKind:      n.Kind,
			colRecipient: n.Recipient,
			colPayload:   string(n.PayloadJSON),
			colAttempts:  0,
			colCreatedAt: utc(n.CreatedAt),
		})
	}

	stmt := s.builder().Insert(s.notificationsTable).Rows(rows...).Prepared(s.prepared)

	rowsAffected, err := s.exec(ctx, q, logActionOutboxInsert, stmt)
	if err != nil {
		return err
	}

	if rowsAffected != int64(len(notifications)) {
		return errors.Join(
			orderstore.ErrWritingOrderFailed,
			errors.New("outbox insert affected "+strconv.FormatInt(rowsAffected, 10)+" rows"),
		)
	}

	return nil
}
