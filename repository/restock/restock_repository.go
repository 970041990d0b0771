package restock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tdhoang/evdealer-client/apiclient"
	"github.com/tdhoang/evdealer-client/constant"
	"github.com/tdhoang/evdealer-client/model"
	cerr "github.com/tdhoang/evdealer-client/utils/errors"
	validatorx "github.com/tdhoang/evdealer-client/utils/validator"
)

// RestockRepository is the typed gateway over the restock REST endpoints.
// One implementation serves both roles; the role only selects the list base
// path, collapsing the two near-duplicate per-role gateways of the mobile
// client into a single parameterized one.
type RestockRepository interface {
	// List returns one page of orders. Status and agency filters are applied
	// server-side when set; no match is an empty slice, not an error.
	List(ctx context.Context, params *model.ListRestockParams) ([]model.RestockOrder, *model.PaginationInfo, error)
	// Detail returns the full order including the embedded warehouse and
	// vehicle objects. Unknown ids fail with a not-found error.
	Detail(ctx context.Context, orderID uint64) (*model.RestockOrder, error)
	// UpdateStatus moves the order to status. The caller validates the
	// transition against the policy first; the backend stays authoritative
	// and its rejections surface verbatim as domain errors.
	UpdateStatus(ctx context.Context, orderID uint64, status constant.RestockStatus) (*model.RestockOrder, error)
	// Accept moves a DRAFT order into PENDING.
	Accept(ctx context.Context, orderID uint64) (*model.RestockOrder, error)
	// Delete permanently removes an order. The backend permits it only while
	// the order is still DRAFT.
	Delete(ctx context.Context, orderID uint64) error
}

type API struct {
	client *apiclient.Client
	role   constant.Role
}

func NewRestockRepository(client *apiclient.Client, role constant.Role) RestockRepository {
	return &API{client: client, role: role}
}

func (r *API) List(ctx context.Context, params *model.ListRestockParams) ([]model.RestockOrder, *model.PaginationInfo, error) {
	if params == nil {
		return nil, nil, cerr.SetCustomError(constant.ErrInvalidRequest)
	}
	if err := validatorx.ValidateStruct(params); err != nil {
		return nil, nil, cerr.SetCustomError(constant.ErrInvalidRequest)
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("limit", strconv.Itoa(params.Limit))
	if params.Status != "" {
		query.Set("status", string(params.Status))
	}

	path := fmt.Sprintf("/order-restock/list/%d", params.AgencyID)
	if r.role == constant.RoleManager {
		path = "/order-restock-management/list"
		if params.AgencyID != 0 {
			query.Set("agencyId", strconv.FormatUint(params.AgencyID, 10))
		}
	}

	body, err := r.client.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, nil, err
	}
	return decodeOrderList(body)
}

func (r *API) Detail(ctx context.Context, orderID uint64) (*model.RestockOrder, error) {
	body, err := r.client.Do(ctx, http.MethodGet, fmt.Sprintf("/order-restock/detail/%d", orderID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(body)
}

func (r *API) UpdateStatus(ctx context.Context, orderID uint64, status constant.RestockStatus) (*model.RestockOrder, error) {
	req := &model.UpdateStatusRequest{Status: status}
	if err := validatorx.ValidateStruct(req); err != nil {
		return nil, cerr.SetCustomError(constant.ErrInvalidRequest)
	}
	body, err := r.client.Do(ctx, http.MethodPatch, fmt.Sprintf("/order-restock-management/status/%d", orderID), nil, req)
	if err != nil {
		return nil, err
	}
	return decodeOrder(body)
}

func (r *API) Accept(ctx context.Context, orderID uint64) (*model.RestockOrder, error) {
	body, err := r.client.Do(ctx, http.MethodPatch, fmt.Sprintf("/order-restock/accept/%d", orderID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(body)
}

func (r *API) Delete(ctx context.Context, orderID uint64) error {
	_, err := r.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/order-restock-management/%d", orderID), nil, nil)
	return err
}

// decodeOrderList normalizes the two list response shapes the backend uses:
// {data: [...], paginationInfo: {...}} or a bare array.
func decodeOrderList(body []byte) ([]model.RestockOrder, *model.PaginationInfo, error) {
	var orders []model.RestockOrder
	if isJSONArray(body) {
		if err := json.Unmarshal(body, &orders); err != nil {
			return nil, nil, cerr.SetCustomError(constant.ErrInternal)
		}
		return orders, nil, nil
	}
	var env model.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, cerr.SetCustomError(constant.ErrInternal)
	}
	if env.Data != nil {
		if err := json.Unmarshal(env.Data, &orders); err != nil {
			return nil, nil, cerr.SetCustomError(constant.ErrInternal)
		}
	}
	return orders, env.PaginationInfo, nil
}

func decodeOrder(body []byte) (*model.RestockOrder, error) {
	var env model.Envelope
	var order model.RestockOrder
	var err error
	if jsonErr := json.Unmarshal(body, &env); jsonErr == nil && env.Data != nil {
		err = json.Unmarshal(env.Data, &order)
	} else {
		err = json.Unmarshal(body, &order)
	}
	if err != nil || order.ID == 0 {
		return nil, cerr.SetCustomError(constant.ErrInternal)
	}
	return &order, nil
}

func isJSONArray(body []byte) bool {
	for _, b := range body {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
