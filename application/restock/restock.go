package restock

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tdhoang/evdealer-client/constant"
	"github.com/tdhoang/evdealer-client/model"
	agencyrepo "github.com/tdhoang/evdealer-client/repository/agency"
	restockrepo "github.com/tdhoang/evdealer-client/repository/restock"
	cerr "github.com/tdhoang/evdealer-client/utils/errors"
	"github.com/tdhoang/evdealer-client/utils/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RestockApp orchestrates the restock list and detail flows: loading pages,
// lazily resolving per-order display names with caching and in-flight
// deduplication, client-side search/filter, status mutations guarded by the
// transition policy, and the refresh handshake between detail and list.
type RestockApp interface {
	// LoadOrders fetches one page, hides DRAFT for staff, and sorts newest
	// first (stable).
	LoadOrders(ctx context.Context, params *model.ListRestockParams) ([]model.RestockOrder, *model.PaginationInfo, error)
	// ResolveNames fills the detail cache for every order still missing
	// display names. Fetches for distinct ids run concurrently; individual
	// failures are logged and leave the entry unresolved.
	ResolveNames(ctx context.Context, orders []model.RestockOrder)
	// OrderNames returns the display names for one order, consulting the
	// cache before falling back to a deduplicated detail fetch.
	OrderNames(ctx context.Context, orderID uint64) (DetailNames, error)
	// CachedNames is the render-path read: cache only, no network.
	CachedNames(orderID uint64) (DetailNames, bool)
	// LoadOrderDetail fetches the full order for the detail screen.
	LoadOrderDetail(ctx context.Context, orderID uint64) (*model.RestockOrder, error)
	// LoadAgencies (re)loads the agency directory.
	LoadAgencies(ctx context.Context) error
	// AgencyName resolves an agency id against the loaded directory.
	AgencyName(agencyID uint64) string
	// Search keeps orders matching the keyword (case-insensitive substring
	// over id, vehicle name, warehouse name, agency name).
	Search(orders []model.RestockOrder, keyword string) []model.RestockOrder
	// FilterByStatus keeps orders with the given status; empty keeps all.
	FilterByStatus(orders []model.RestockOrder, status constant.RestockStatus) []model.RestockOrder
	// Actions lists the operations legal for the order under this app's role.
	Actions(order *model.RestockOrder) []constant.Action
	Advance(ctx context.Context, order *model.RestockOrder) (*model.RestockOrder, error)
	Cancel(ctx context.Context, order *model.RestockOrder) (*model.RestockOrder, error)
	Accept(ctx context.Context, order *model.RestockOrder) (*model.RestockOrder, error)
	Delete(ctx context.Context, order *model.RestockOrder) error
	// Refresh clears the detail cache, reloads the agency directory, and
	// reloads the list.
	Refresh(ctx context.Context, params *model.ListRestockParams) ([]model.RestockOrder, *model.PaginationInfo, error)
	// SetStatusListener registers the callback the list screen hands to the
	// detail screen; it fires after every successful status mutation.
	SetStatusListener(fn func(*model.RestockOrder))
}

type restockAppImpl struct {
	role        constant.Role
	restockRepo restockrepo.RestockRepository
	agencyRepo  agencyrepo.AgencyRepository
	cache       *DetailCache
	flight      singleflight.Group
	notifier    Notifier

	mu             sync.RWMutex
	agencies       map[uint64]model.Agency
	onStatusUpdate func(*model.RestockOrder)
}

func NewRestockApp(role constant.Role, restockRepo restockrepo.RestockRepository, agencyRepo agencyrepo.AgencyRepository, cache *DetailCache, notifier Notifier) RestockApp {
	if cache == nil {
		cache = NewDetailCache()
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &restockAppImpl{
		role:        role,
		restockRepo: restockRepo,
		agencyRepo:  agencyRepo,
		cache:       cache,
		notifier:    notifier,
		agencies:    make(map[uint64]model.Agency),
	}
}

func (a *restockAppImpl) LoadOrders(ctx context.Context, params *model.ListRestockParams) ([]model.RestockOrder, *model.PaginationInfo, error) {
	orders, pagination, err := a.restockRepo.List(ctx, params)
	if err != nil {
		logger.Error("[LoadOrders] list", zap.String("error", err.Error()))
		return nil, nil, err
	}

	if a.role != constant.RoleManager {
		filtered := orders[:0]
		for _, o := range orders {
			if o.Status != constant.RestockStatusDraft {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderAt.After(orders[j].OrderAt)
	})
	return orders, pagination, nil
}

func (a *restockAppImpl) ResolveNames(ctx context.Context, orders []model.RestockOrder) {
	var wg sync.WaitGroup
	for i := range orders {
		order := orders[i]
		if order.HasEmbeddedNames() {
			// the list payload already carries the names, cache them as-is
			a.cache.Set(order.ID, DetailNames{
				WarehouseName: order.Warehouse.Name,
				MotorbikeName: order.ElectricMotorbike.Name,
			})
			continue
		}
		if _, ok := a.cache.Get(order.ID); ok {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := a.OrderNames(ctx, order.ID); err != nil {
				logger.Warn("[ResolveNames] detail fetch", zap.Uint64("order_id", order.ID), zap.String("error", err.Error()))
			}
		}()
	}
	wg.Wait()
}

func (a *restockAppImpl) OrderNames(ctx context.Context, orderID uint64) (DetailNames, error) {
	if names, ok := a.cache.Get(orderID); ok {
		return names, nil
	}
	v, err, _ := a.flight.Do(strconv.FormatUint(orderID, 10), func() (interface{}, error) {
		// a waiter may land here after the winner populated the cache
		if names, ok := a.cache.Get(orderID); ok {
			return names, nil
		}
		order, err := a.restockRepo.Detail(ctx, orderID)
		if err != nil {
			return nil, err
		}
		names := namesOf(order)
		a.cache.Set(orderID, names)
		return names, nil
	})
	if err != nil {
		return DetailNames{}, err
	}
	return v.(DetailNames), nil
}

func (a *restockAppImpl) CachedNames(orderID uint64) (DetailNames, bool) {
	return a.cache.Get(orderID)
}

func (a *restockAppImpl) LoadOrderDetail(ctx context.Context, orderID uint64) (*model.RestockOrder, error) {
	order, err := a.restockRepo.Detail(ctx, orderID)
	if err != nil {
		logger.Error("[LoadOrderDetail] detail", zap.Uint64("order_id", orderID), zap.String("error", err.Error()))
		return nil, err
	}
	a.cache.Set(order.ID, namesOf(order))
	return order, nil
}

func (a *restockAppImpl) LoadAgencies(ctx context.Context) error {
	agencies, err := a.agencyRepo.List(ctx)
	if err != nil {
		logger.Error("[LoadAgencies] list", zap.String("error", err.Error()))
		return err
	}
	byID := make(map[uint64]model.Agency, len(agencies))
	for _, ag := range agencies {
		byID[ag.ID] = ag
	}
	a.mu.Lock()
	a.agencies = byID
	a.mu.Unlock()
	return nil
}

func (a *restockAppImpl) AgencyName(agencyID uint64) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.agencies[agencyID].Name
}

func (a *restockAppImpl) Search(orders []model.RestockOrder, keyword string) []model.RestockOrder {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return orders
	}
	matched := make([]model.RestockOrder, 0, len(orders))
	for _, o := range orders {
		if a.matches(&o, keyword) {
			matched = append(matched, o)
		}
	}
	return matched
}

func (a *restockAppImpl) matches(o *model.RestockOrder, keyword string) bool {
	if strings.Contains(strconv.FormatUint(o.ID, 10), keyword) {
		return true
	}
	warehouseName, motorbikeName := "", ""
	if o.Warehouse != nil {
		warehouseName = o.Warehouse.Name
	}
	if o.ElectricMotorbike != nil {
		motorbikeName = o.ElectricMotorbike.Name
	}
	if names, ok := a.cache.Get(o.ID); ok {
		if warehouseName == "" {
			warehouseName = names.WarehouseName
		}
		if motorbikeName == "" {
			motorbikeName = names.MotorbikeName
		}
	}
	for _, candidate := range []string{warehouseName, motorbikeName, a.AgencyName(o.AgencyID)} {
		if candidate != "" && strings.Contains(strings.ToLower(candidate), keyword) {
			return true
		}
	}
	return false
}

func (a *restockAppImpl) FilterByStatus(orders []model.RestockOrder, status constant.RestockStatus) []model.RestockOrder {
	if status == "" {
		return orders
	}
	matched := make([]model.RestockOrder, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			matched = append(matched, o)
		}
	}
	return matched
}

func (a *restockAppImpl) Actions(order *model.RestockOrder) []constant.Action {
	if order == nil {
		return nil
	}
	return constant.AvailableActions(order.Status, a.role)
}

func (a *restockAppImpl) Advance(ctx context.Context, order *model.RestockOrder) (*model.RestockOrder, error) {
	if order == nil {
		return nil, cerr.SetCustomError(constant.ErrInvalidRequest)
	}
	next, ok := order.Status.Next()
	if !ok {
		return nil, cerr.SetCustomError(constant.ErrIllegalTransition)
	}
	updated, err := a.restockRepo.UpdateStatus(ctx, order.ID, next)
	if err != nil {
		a.notifier.Error(err.Error())
		return nil, err
	}
	a.notifier.Success(fmt.Sprintf("Order #%d moved to %s", updated.ID, updated.Status.Meta().Label))
	a.notifyStatusUpdate(updated)
	return updated, nil
}

func (a *restockAppImpl) Cancel(ctx context.Context, order *model.RestockOrder) (*model.RestockOrder, error) {
	if order == nil {
		return nil, cerr.SetCustomError(constant.ErrInvalidRequest)
	}
	if !order.Status.CanCancel() {
		return nil, cerr.SetCustomError(constant.ErrIllegalTransition)
	}
	if !a.notifier.Confirm("Cancel order", fmt.Sprintf("Cancel restock order #%d?", order.ID)) {
		return order, nil
	}
	updated, err := a.restockRepo.UpdateStatus(ctx, order.ID, constant.RestockStatusCanceled)
	if err != nil {
		a.notifier.Error(err.Error())
		return nil, err
	}
	a.notifier.Success(fmt.Sprintf("Order #%d canceled", updated.ID))
	a.notifyStatusUpdate(updated)
	return updated, nil
}

func (a *restockAppImpl) Accept(ctx context.Context, order *model.RestockOrder) (*model.RestockOrder, error) {
	if order == nil {
		return nil, cerr.SetCustomError(constant.ErrInvalidRequest)
	}
	if a.role != constant.RoleManager {
		return nil, cerr.SetCustomError(constant.ErrUnauthorized)
	}
	if order.Status != constant.RestockStatusDraft {
		return nil, cerr.SetCustomError(constant.ErrIllegalTransition)
	}
	updated, err := a.restockRepo.Accept(ctx, order.ID)
	if err != nil {
		a.notifier.Error(err.Error())
		return nil, err
	}
	a.notifier.Success(fmt.Sprintf("Order #%d accepted", updated.ID))
	a.notifyStatusUpdate(updated)
	return updated, nil
}

func (a *restockAppImpl) Delete(ctx context.Context, order *model.RestockOrder) error {
	if order == nil {
		return cerr.SetCustomError(constant.ErrInvalidRequest)
	}
	if a.role != constant.RoleManager {
		return cerr.SetCustomError(constant.ErrUnauthorized)
	}
	if order.Status != constant.RestockStatusDraft {
		// hiding the button is UX only, the backend re-validates too
		return cerr.SetCustomError(constant.ErrIllegalTransition)
	}
	if !a.notifier.Confirm("Delete order", fmt.Sprintf("Permanently delete draft order #%d?", order.ID)) {
		return nil
	}
	if err := a.restockRepo.Delete(ctx, order.ID); err != nil {
		a.notifier.Error(err.Error())
		return err
	}
	a.notifier.Success(fmt.Sprintf("Order #%d deleted", order.ID))
	a.notifyStatusUpdate(order)
	return nil
}

func (a *restockAppImpl) Refresh(ctx context.Context, params *model.ListRestockParams) ([]model.RestockOrder, *model.PaginationInfo, error) {
	a.cache.Clear()
	if err := a.LoadAgencies(ctx); err != nil {
		// stale agency names are tolerable, the list itself is not
		logger.Warn("[Refresh] agency reload failed", zap.String("error", err.Error()))
	}
	return a.LoadOrders(ctx, params)
}

func (a *restockAppImpl) SetStatusListener(fn func(*model.RestockOrder)) {
	a.mu.Lock()
	a.onStatusUpdate = fn
	a.mu.Unlock()
}

func (a *restockAppImpl) notifyStatusUpdate(order *model.RestockOrder) {
	a.mu.RLock()
	fn := a.onStatusUpdate
	a.mu.RUnlock()
	if fn != nil {
		fn(order)
	}
}

func namesOf(order *model.RestockOrder) DetailNames {
	names := DetailNames{}
	if order.Warehouse != nil {
		names.WarehouseName = order.Warehouse.Name
	}
	if order.ElectricMotorbike != nil {
		names.MotorbikeName = order.ElectricMotorbike.Name
	}
	return names
}
