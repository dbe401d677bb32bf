package sqlengine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/orderstore/sqlengine/internal/adapters"
)

var orderColumns = []interface{}{
	colID, colCustomerID, colFullName, colEmail, colPhone, colAddress, colCity, colRegion,
	colDeliveryMethod, colDeliverySpeed, colSubtotal, colDeliveryFee, colTotal, colDeclaredSubtotal,
	colStatus, colTrackingNumber, colNotes, colInvoiceURL, colCreatedAt, colUpdatedAt, colDeliveredAt,
}

var articleColumns = []interface{}{
	colOrderID, colProductID, colProductName, colUnitPrice, colQuantity, colSize, colColor, colLineSubtotal,
}

// orderRow holds the nullable scan targets of one orders row.
type orderRow struct {
	order            orderstore.StorableOrder
	customerID       sql.NullString
	declaredSubtotal sql.NullInt64
	trackingNumber   sql.NullString
	notes            sql.NullString
	invoiceURL       sql.NullString
	deliveredAt      sql.NullTime
}

// GetByID loads one order with its article snapshots or returns orderstore.ErrOrderNotFound.
func (s OrderStore) GetByID(ctx context.Context, orderID string) (order orderstore.StorableOrder, err error) {
	observer, ctx := s.observe(ctx, logActionGet, map[string]string{spanAttrOrderID: orderID})
	defer func() { observer.finish(err) }()

	stmt := s.builder().
		From(s.ordersTable).
		Select(orderColumns...).
		Where(goqu.C(colID).Eq(orderID)).
		Prepared(s.prepared)

	orders, err := s.queryOrders(ctx, s.db, logActionGet, stmt)
	if err != nil {
		return orderstore.StorableOrder{}, err
	}

	if len(orders) == 0 {
		return orderstore.StorableOrder{}, orderstore.ErrOrderNotFound
	}

	if err = s.attachArticles(ctx, orders); err != nil {
		return orderstore.StorableOrder{}, err
	}

	return orders[0], nil
}

// ListByCustomer returns one page of the customer's orders, newest first.
func (s OrderStore) ListByCustomer(ctx context.Context, customerID string, page orderstore.Page) (result orderstore.OrderPage, err error) {
	observer, ctx := s.observe(ctx, logActionList, map[string]string{"scope": "customer"})
	defer func() { observer.finish(err) }()

	return s.listOrders(ctx, goqu.C(colCustomerID).Eq(customerID), page, false)
}

// ListAll returns one page of all orders, newest first, with the number of orders per status.
func (s OrderStore) ListAll(ctx context.Context, page orderstore.Page) (result orderstore.OrderPage, err error) {
	observer, ctx := s.observe(ctx, logActionList, map[string]string{"scope": "all"})
	defer func() { observer.finish(err) }()

	return s.listOrders(ctx, nil, page, true)
}

func (s OrderStore) listOrders(
	ctx context.Context,
	filter exp.Expression,
	page orderstore.Page,
	withCounts bool,
) (orderstore.OrderPage, error) {

	page = orderstore.NewPage(page.Number, page.Size)
	result := orderstore.OrderPage{Page: page, Orders: make([]orderstore.StorableOrder, 0)}

	countStmt := s.builder().From(s.ordersTable).Select(goqu.COUNT(colID).As(aliasCount))
	pageStmt := s.builder().From(s.ordersTable).Select(orderColumns...)

	if filter != nil {
		countStmt = countStmt.Where(filter)
		pageStmt = pageStmt.Where(filter)
	}

	total, err := s.scanCount(ctx, s.db, countStmt.Prepared(s.prepared))
	if err != nil {
		return orderstore.OrderPage{}, err
	}

	result.TotalCount = int(total)

	if withCounts {
		counts, countErr := s.countByStatus(ctx)
		if countErr != nil {
			return orderstore.OrderPage{}, countErr
		}

		result.CountsByStatus = counts
	}

	pageStmt = pageStmt.
		Order(goqu.C(colCreatedAt).Desc(), goqu.C(colID).Desc()).
		Limit(uint(page.Size)).
		Offset(uint(page.Offset())).
		Prepared(s.prepared)

	orders, err := s.queryOrders(ctx, s.db, logActionList, pageStmt)
	if err != nil {
		return orderstore.OrderPage{}, err
	}

	if err = s.attachArticles(ctx, orders); err != nil {
		return orderstore.OrderPage{}, err
	}

	result.Orders = orders

	return result, nil
}

func (s OrderStore) countByStatus(ctx context.Context) (map[string]int, error) {
	stmt := s.builder().
		From(s.ordersTable).
		Select(colStatus, goqu.COUNT(colID).As(aliasCount)).
		GroupBy(colStatus).
		Prepared(s.prepared)

	rows, err := s.query(ctx, s.db, logActionCountByStatus, stmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(ctx, rows)

	counts := make(map[string]int)

	for rows.Next() {
		var status string
		var count int64

		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(orderstore.ErrScanningDBRowFailed, scanErr)
		}

		counts[status] = int(count)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(orderstore.ErrQueryingOrdersFailed, rowsErr)
	}

	return counts, nil
}

// queryOrders runs a SELECT over orderColumns and scans all rows; rows are closed before returning.
func (s OrderStore) queryOrders(ctx context.Context, q adapters.Querier, action string, stmt sqlBuilder) ([]orderstore.StorableOrder, error) {
	rows, err := s.query(ctx, q, action, stmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(ctx, rows)

	orders := make([]orderstore.StorableOrder, 0)

	for rows.Next() {
		order, scanErr := s.scanOrder(rows)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(orderstore.ErrScanningDBRowFailed, scanErr)
		}

		orders = append(orders, order)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(orderstore.ErrQueryingOrdersFailed, rowsErr)
	}

	return orders, nil
}

func (s OrderStore) scanOrder(rows adapters.DBRows) (orderstore.StorableOrder, error) {
	r := orderRow{}
	o := &r.order

	err := rows.Scan(
		&o.ID, &r.customerID, &o.FullName, &o.Email, &o.Phone, &o.Address, &o.City, &o.Region,
		&o.DeliveryMethod, &o.DeliverySpeed, &o.Subtotal, &o.DeliveryFee, &o.Total, &r.declaredSubtotal,
		&o.Status, &r.trackingNumber, &r.notes, &r.invoiceURL, &o.CreatedAt, &o.UpdatedAt, &r.deliveredAt,
	)
	if err != nil {
		return orderstore.StorableOrder{}, err
	}

	o.CustomerID = stringPtr(r.customerID)
	o.TrackingNumber = stringPtr(r.trackingNumber)
	o.Notes = stringPtr(r.notes)
	o.InvoiceURL = stringPtr(r.invoiceURL)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()

	if r.declaredSubtotal.Valid {
		v := r.declaredSubtotal.Int64
		o.DeclaredSubtotal = &v
	}

	if r.deliveredAt.Valid {
		v := r.deliveredAt.Time.UTC()
		o.DeliveredAt = &v
	}

	return *o, nil
}

// attachArticles loads the article snapshots of all given orders with one query, in their original order.
func (s OrderStore) attachArticles(ctx context.Context, orders []orderstore.StorableOrder) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]interface{}, 0, len(orders))
	index := make(map[string]int, len(orders))

	for i, o := range orders {
		ids = append(ids, o.ID)
		index[o.ID] = i
	}

	stmt := s.builder().
		From(s.articlesTable).
		Select(articleColumns...).
		Where(goqu.C(colOrderID).In(ids...)).
		Order(goqu.C(colOrderID).Asc(), goqu.C(colPosition).Asc()).
		Prepared(s.prepared)

	rows, err := s.query(ctx, s.db, logActionLoadArticles, stmt)
	if err != nil {
		return err
	}
	defer s.closeRows(ctx, rows)

	for rows.Next() {
		var orderID string
		var article orderstore.StorableArticle
		var size sql.NullString

		scanErr := rows.Scan(
			&orderID, &article.ProductID, &article.ProductName, &article.UnitPrice,
			&article.Quantity, &size, &article.Color, &article.LineSubtotal,
		)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return errors.Join(orderstore.ErrScanningDBRowFailed, scanErr)
		}

		article.Size = stringPtr(size)

		if i, ok := index[orderID]; ok {
			orders[i].Articles = append(orders[i].Articles, article)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return errors.Join(orderstore.ErrQueryingOrdersFailed, rowsErr)
	}

	return nil
}

func (s OrderStore) scanCount(ctx context.Context, q adapters.Querier, stmt sqlBuilder) (int64, error) {
	rows, err := s.query(ctx, q, logActionCount, stmt)
	if err != nil {
		return 0, err
	}
	defer s.closeRows(ctx, rows)

	var count int64

	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return 0, errors.Join(orderstore.ErrScanningDBRowFailed, scanErr)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return 0, errors.Join(orderstore.ErrQueryingOrdersFailed, rowsErr)
	}

	return count, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}

	v := ns.String

	return &v
}
