package transport

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

func apartmentPath(id types.ID) string {
	return "/apartments/" + url.PathEscape(id.String())
}

func (c *Client) ListApartments(ctx context.Context) ([]types.Apartment, error) {
	var out []types.Apartment
	if err := c.do(ctx, "list apartments", http.MethodGet, "/apartments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetApartment(ctx context.Context, id types.ID) (types.Apartment, error) {
	var out types.Apartment
	err := c.do(ctx, "get apartment", http.MethodGet, apartmentPath(id), nil, &out)
	return out, err
}

func (c *Client) CreateApartment(ctx context.Context, fields types.ApartmentFields) (types.Apartment, error) {
	var out types.Apartment
	err := c.do(ctx, "create apartment", http.MethodPost, "/apartments", fields, &out)
	return out, err
}

func (c *Client) UpdateApartment(ctx context.Context, id types.ID, fields types.ApartmentFields) (types.Apartment, error) {
	var out types.Apartment
	err := c.do(ctx, "update apartment", http.MethodPut, apartmentPath(id), fields, &out)
	return out, err
}

func (c *Client) SetApartmentStatus(ctx context.Context, id types.ID, status string) (types.Apartment, error) {
	var out types.Apartment
	err := c.do(ctx, "set apartment status", http.MethodPut, apartmentPath(id)+"/status", types.ApartmentStatusUpdate{Status: status}, &out)
	return out, err
}

// DeactivateApartment is the soft removal: the apartment becomes inactive.
func (c *Client) DeactivateApartment(ctx context.Context, id types.ID) error {
	return c.do(ctx, "deactivate apartment", http.MethodDelete, apartmentPath(id), nil, nil)
}

// DeleteApartment removes the apartment. The server refuses when contracts
// reference it.
func (c *Client) DeleteApartment(ctx context.Context, id types.ID) error {
	return c.do(ctx, "delete apartment", http.MethodDelete, apartmentPath(id)+"?hard=true", nil, nil)
}
