package httpapi

import (
	"time"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/pricing"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

type articleResponse struct {
	ProductID    int64   `json:"produit_id"`
	ProductName  string  `json:"nom_produit"`
	UnitPrice    int64   `json:"prix_unitaire"`
	Quantity     int     `json:"quantite"`
	Size         *string `json:"taille"`
	Color        string  `json:"couleur"`
	LineSubtotal int64   `json:"sous_total"`
}

type orderResponse struct {
	ID               string            `json:"id"`
	CustomerID       *string           `json:"client_id"`
	FullName         string            `json:"nom_complet"`
	Email            string            `json:"email"`
	Phone            string            `json:"telephone"`
	Address          string            `json:"adresse"`
	City             string            `json:"ville"`
	Region           string            `json:"wilaya"`
	Method           string            `json:"methode_livraison"`
	Speed            string            `json:"vitesse_livraison"`
	Subtotal         int64             `json:"sous_total"`
	DeliveryFee      int64             `json:"frais_livraison"`
	Total            int64             `json:"total"`
	DeclaredSubtotal *int64            `json:"sous_total_declare,omitempty"`
	Status           string            `json:"statut"`
	TrackingNumber   *string           `json:"numero_suivi"`
	Notes            *string           `json:"notes"`
	InvoiceURL       *string           `json:"facture_url"`
	CreatedAt        time.Time         `json:"date_creation"`
	UpdatedAt        time.Time         `json:"date_modification"`
	DeliveredAt      *time.Time        `json:"date_livraison"`
	Articles         []articleResponse `json:"articles"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"commandes"`
	Page       int             `json:"page"`
	PageSize   int             `json:"limite"`
	TotalCount int             `json:"total"`
	TotalPages int             `json:"pages"`
	Counts     map[string]int  `json:"compteurs,omitempty"`
}

type tariffResponse struct {
	Code          int    `json:"code"`
	Name          string `json:"nom"`
	ExpressHome   *int64 `json:"express_domicile"`
	ExpressOffice *int64 `json:"express_bureau"`
	EconomyHome   *int64 `json:"economique_domicile"`
	EconomyOffice *int64 `json:"economique_bureau"`
}

func orderResponseFrom(o core.Order) orderResponse {
	articles := make([]articleResponse, 0, len(o.Articles))
	for _, a := range o.Articles {
		articles = append(articles, articleResponse{
			ProductID:    a.ProductID,
			ProductName:  a.ProductName,
			UnitPrice:    a.UnitPrice,
			Quantity:     a.Quantity,
			Size:         a.Size,
			Color:        a.Color,
			LineSubtotal: a.LineSubtotal,
		})
	}

	return orderResponse{
		ID:               o.ID.String(),
		CustomerID:       o.CustomerID,
		FullName:         o.Contact.FullName,
		Email:            o.Contact.Email,
		Phone:            o.Contact.Phone,
		Address:          o.Contact.Address,
		City:             o.Contact.City,
		Region:           o.Contact.Region,
		Method:           string(o.Method),
		Speed:            string(o.Speed),
		Subtotal:         o.Subtotal,
		DeliveryFee:      o.DeliveryFee,
		Total:            o.Total,
		DeclaredSubtotal: o.DeclaredSubtotal,
		Status:           string(o.Status),
		TrackingNumber:   o.TrackingNumber,
		Notes:            o.Notes,
		InvoiceURL:       o.InvoiceURL,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		DeliveredAt:      o.DeliveredAt,
		Articles:         articles,
	}
}

func orderListResponseFrom(list shell.OrderList) orderListResponse {
	orders := make([]orderResponse, 0, len(list.Orders))
	for _, o := range list.Orders {
		orders = append(orders, orderResponseFrom(o))
	}

	response := orderListResponse{
		Orders:     orders,
		Page:       list.Page,
		PageSize:   list.PageSize,
		TotalCount: list.TotalCount,
		TotalPages: list.TotalPages,
	}

	if list.CountsByStatus != nil {
		response.Counts = make(map[string]int, len(list.CountsByStatus))
		for status, n := range list.CountsByStatus {
			response.Counts[string(status)] = n
		}
	}

	return response
}

func tariffResponsesFrom(tariffs []pricing.Tariff) []tariffResponse {
	out := make([]tariffResponse, 0, len(tariffs))
	for _, t := range tariffs {
		out = append(out, tariffResponse{
			Code:          t.Region.Code,
			Name:          t.Region.Name,
			ExpressHome:   t.ExpressHome,
			ExpressOffice: t.ExpressOffice,
			EconomyHome:   t.EconomyHome,
			EconomyOffice: t.EconomyOffice,
		})
	}

	return out
}
