package httpapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/changeorderstatus"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/confirmorder"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/placeorder"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/removecancelledorder"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/allorders"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/customerorders"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/orderbyid"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

const (
	fieldArticles         = "articles"
	fieldInvoice          = "facture"
	fieldDeclaredSubtotal = "sous_total"

	msgAlreadyTerminal  = "la commande est déjà dans un état final"
	msgUnchanged        = "aucun changement"
	msgAlreadyConfirmed = "la commande est déjà confirmée"
	msgOrderRemoved     = "commande supprimée"
)

var ErrRequestTooLarge = errors.New("request body too large")

// ErrCancellationOnly is joined with core.ErrForbiddenTransition when the customer status route
// is asked for anything but a cancellation, whatever the caller's role.
var ErrCancellationOnly = errors.New("this route only cancels orders")

type customerStatusRequest struct {
	Status string `json:"statut" validate:"required"`
}

type adminStatusRequest struct {
	Status         string  `json:"statut" validate:"required"`
	TrackingNumber *string `json:"numero_suivi" validate:"omitempty,max=100"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
}

func (s *server) placeOrder(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, ErrRequestTooLarge)
			return
		}

		verr := core.NewValidationError()
		verr.Add(fieldArticles, "the request must be a multipart form")
		writeError(c, verr)

		return
	}

	command, invoice, err := s.placeOrderCommand(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if invoice != nil {
		defer func() { _ = invoice.Close() }()
		command.Invoice = invoice
	}

	order, _, err := s.handlers.PlaceOrder.Handle(c.Request.Context(), command)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusCreated, orderResponseFrom(order))
}

// placeOrderCommand reads the form fields. The returned file must be closed by the caller.
func (s *server) placeOrderCommand(c *gin.Context) (placeorder.Command, multipart.File, error) {
	verr := core.NewValidationError()

	var lines []placeorder.Line
	if err := jsoniter.ConfigFastest.UnmarshalFromString(c.PostForm(fieldArticles), &lines); err != nil {
		verr.Add(fieldArticles, "must be a JSON array of lines")
	}

	command := placeorder.BuildCommand(actorFrom(c), lines, s.now())
	command.FullName = strings.TrimSpace(c.PostForm("nom_complet"))
	command.Email = strings.TrimSpace(c.PostForm("email"))
	command.Phone = strings.TrimSpace(c.PostForm("telephone"))
	command.Address = strings.TrimSpace(c.PostForm("adresse"))
	command.City = strings.TrimSpace(c.PostForm("ville"))
	command.Region = strings.TrimSpace(c.PostForm("wilaya"))
	command.Method = strings.TrimSpace(c.PostForm("methode_livraison"))
	command.Speed = strings.TrimSpace(c.PostForm("vitesse_livraison"))

	if raw := strings.TrimSpace(c.PostForm(fieldDeclaredSubtotal)); raw != "" {
		declared, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			verr.Add(fieldDeclaredSubtotal, "must be an integer amount")
		} else {
			command.DeclaredSubtotal = &declared
		}
	}

	if notes := strings.TrimSpace(c.PostForm("notes")); notes != "" {
		command.Notes = &notes
	}

	if err := verr.OrNil(); err != nil {
		return placeorder.Command{}, nil, err
	}

	header, err := c.FormFile(fieldInvoice)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return command, nil, nil
	}

	if err != nil {
		return placeorder.Command{}, nil, err
	}

	file, err := header.Open()
	if err != nil {
		return placeorder.Command{}, nil, err
	}

	return command, file, nil
}

func (s *server) getOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := s.handlers.OrderByID.Handle(c.Request.Context(), orderbyid.BuildQuery(orderID, actorFrom(c)))
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, orderResponseFrom(order))
}

func (s *server) listCustomerOrders(c *gin.Context) {
	page, size := pagination(c)

	list, err := s.handlers.CustomerOrders.Handle(c.Request.Context(), customerorders.BuildQuery(actorFrom(c), page, size))
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, orderListResponseFrom(list))
}

func (s *server) listAllOrders(c *gin.Context) {
	page, size := pagination(c)

	list, err := s.handlers.AllOrders.Handle(c.Request.Context(), allorders.BuildQuery(actorFrom(c), page, size))
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, orderListResponseFrom(list))
}

func (s *server) changeStatusAsCustomer(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req customerStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if status, known := core.ParseStatus(req.Status); known && status != core.StatusCancelled {
		writeError(c, errors.Join(core.ErrForbiddenTransition, ErrCancellationOnly))
		return
	}

	command := changeorderstatus.BuildCommand(orderID, req.Status, actorFrom(c), nil, nil, s.now())
	s.changeStatus(c, command)
}

func (s *server) changeStatusAsAdmin(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req adminStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	command := changeorderstatus.BuildCommand(orderID, req.Status, actorFrom(c), req.TrackingNumber, req.Notes, s.now())
	s.changeStatus(c, command)
}

func (s *server) changeStatus(c *gin.Context, command changeorderstatus.Command) {
	order, result, err := s.handlers.ChangeOrderStatus.Handle(c.Request.Context(), command)
	if err != nil {
		writeError(c, err)
		return
	}

	if result.Idempotent {
		respondIdempotent(c, idempotentMessage(result.Reason), result.Reason, orderResponseFrom(order))
		return
	}

	respond(c, http.StatusOK, orderResponseFrom(order))
}

func (s *server) confirmOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, result, err := s.handlers.ConfirmOrder.Handle(c.Request.Context(), confirmorder.BuildCommand(orderID, actorFrom(c), s.now()))
	if err != nil {
		writeError(c, err)
		return
	}

	if result.Idempotent {
		respondIdempotent(c, idempotentMessage(result.Reason), result.Reason, orderResponseFrom(order))
		return
	}

	respond(c, http.StatusOK, orderResponseFrom(order))
}

func (s *server) removeCancelledOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, _, err := s.handlers.RemoveCancelledOrder.Handle(c.Request.Context(), removecancelledorder.BuildCommand(orderID, actorFrom(c)))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{Success: true, Message: msgOrderRemoved, Data: gin.H{"id": order.ID.String()}})
}

func idempotentMessage(reason string) string {
	switch reason {
	case core.ReasonAlreadyTerminal:
		return msgAlreadyTerminal
	case core.ReasonAlreadyConfirmed:
		return msgAlreadyConfirmed
	default:
		return msgUnchanged
	}
}

// orderIDParam parses :id; an id that is not a UUID cannot exist, so it is answered with 404.
func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, orderstore.ErrOrderNotFound)
		return uuid.UUID{}, false
	}

	return id, true
}

// pagination reads ?page=&limit=; invalid values fall back to the store defaults.
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("limit"))

	return page, size
}

func bindJSON(c *gin.Context, target any) bool {
	if err := jsoniter.ConfigFastest.NewDecoder(c.Request.Body).Decode(target); err != nil {
		verr := core.NewValidationError()
		verr.Add("body", "must be a JSON object")
		writeError(c, verr)

		return false
	}

	if err := shell.ValidateStruct(target); err != nil {
		writeError(c, err)
		return false
	}

	return true
}
