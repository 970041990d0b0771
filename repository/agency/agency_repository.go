package agency

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tdhoang/evdealer-client/apiclient"
	"github.com/tdhoang/evdealer-client/constant"
	"github.com/tdhoang/evdealer-client/model"
	cerr "github.com/tdhoang/evdealer-client/utils/errors"
)

// AgencyRepository loads the agency directory used to resolve agency ids to
// display names without a round trip per row.
type AgencyRepository interface {
	List(ctx context.Context) ([]model.Agency, error)
}

type API struct {
	client *apiclient.Client
}

func NewAgencyRepository(client *apiclient.Client) AgencyRepository {
	return &API{client: client}
}

func (r *API) List(ctx context.Context) ([]model.Agency, error) {
	body, err := r.client.Do(ctx, http.MethodGet, "/agency/list", nil, nil)
	if err != nil {
		return nil, err
	}

	var agencies []model.Agency
	var env model.Envelope
	if jsonErr := json.Unmarshal(body, &env); jsonErr == nil && env.Data != nil {
		err = json.Unmarshal(env.Data, &agencies)
	} else {
		err = json.Unmarshal(body, &agencies)
	}
	if err != nil {
		return nil, cerr.SetCustomError(constant.ErrInternal)
	}
	return agencies, nil
}
