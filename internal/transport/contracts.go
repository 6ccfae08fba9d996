package transport

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

func contractPath(id types.ID) string {
	return "/contracts/" + url.PathEscape(id.String())
}

func (c *Client) ListContracts(ctx context.Context) ([]types.Contract, error) {
	var out []types.Contract
	if err := c.do(ctx, "list contracts", http.MethodGet, "/contracts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetContract(ctx context.Context, id types.ID) (types.Contract, error) {
	var out types.Contract
	err := c.do(ctx, "get contract", http.MethodGet, contractPath(id), nil, &out)
	return out, err
}

func (c *Client) CreateContract(ctx context.Context, payload types.ContractPayload) (types.Contract, error) {
	var out types.Contract
	err := c.do(ctx, "create contract", http.MethodPost, "/contracts", payload, &out)
	return out, err
}

func (c *Client) UpdateContract(ctx context.Context, id types.ID, payload types.ContractPayload) (types.Contract, error) {
	var out types.Contract
	err := c.do(ctx, "update contract", http.MethodPut, contractPath(id), payload, &out)
	return out, err
}

// DeactivateContract is the soft removal for a contract with an apartment.
func (c *Client) DeactivateContract(ctx context.Context, id types.ID) error {
	return c.do(ctx, "deactivate contract", http.MethodDelete, contractPath(id), nil, nil)
}

// DeleteContract removes a contract permanently.
func (c *Client) DeleteContract(ctx context.Context, id types.ID) error {
	return c.do(ctx, "delete contract", http.MethodDelete, contractPath(id)+"?hard=true", nil, nil)
}
