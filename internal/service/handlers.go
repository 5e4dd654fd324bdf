package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	BudgetServiceName   = "splitty.v1.BudgetService"
	LedgerServiceName   = "splitty.v1.LedgerService"
	SettingsServiceName = "splitty.v1.SettingsService"
)

// Fully-qualified procedure names.
const (
	BudgetServiceGetMonthViewProcedure      = "/" + BudgetServiceName + "/GetMonthView"
	BudgetServiceGetCategoryDetailProcedure = "/" + BudgetServiceName + "/GetCategoryDetail"
	BudgetServiceSetCategoryBudgetProcedure = "/" + BudgetServiceName + "/SetCategoryBudget"
	BudgetServiceSuggestBudgetProcedure     = "/" + BudgetServiceName + "/SuggestBudget"

	LedgerServiceCreateExpenseProcedure      = "/" + LedgerServiceName + "/CreateExpense"
	LedgerServiceDeleteExpenseProcedure      = "/" + LedgerServiceName + "/DeleteExpense"
	LedgerServiceGetBalancesProcedure        = "/" + LedgerServiceName + "/GetBalances"
	LedgerServiceGetSettlementGraphProcedure = "/" + LedgerServiceName + "/GetSettlementGraph"
	LedgerServiceListSettleableProcedure     = "/" + LedgerServiceName + "/ListSettleable"
	LedgerServiceSettleUpProcedure           = "/" + LedgerServiceName + "/SettleUp"
	LedgerServiceListActivityProcedure       = "/" + LedgerServiceName + "/ListActivity"

	SettingsServiceGetPreferencesProcedure    = "/" + SettingsServiceName + "/GetPreferences"
	SettingsServiceUpdatePreferencesProcedure = "/" + SettingsServiceName + "/UpdatePreferences"
	SettingsServiceListCategoriesProcedure    = "/" + SettingsServiceName + "/ListCategories"
	SettingsServiceCreateCategoryProcedure    = "/" + SettingsServiceName + "/CreateCategory"
	SettingsServiceDeleteCategoryProcedure    = "/" + SettingsServiceName + "/DeleteCategory"
	SettingsServiceCreateFriendProcedure      = "/" + SettingsServiceName + "/CreateFriend"
	SettingsServiceCreateGroupProcedure       = "/" + SettingsServiceName + "/CreateGroup"
)

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
}

func servicePath(name string) string {
	return "/" + name + "/"
}

// NewBudgetServiceHandler builds an HTTP handler for s and returns the path
// to mount it on.
func NewBudgetServiceHandler(s *BudgetService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, BudgetServiceGetMonthViewProcedure, s.GetMonthView, opts)
	handle(mux, BudgetServiceGetCategoryDetailProcedure, s.GetCategoryDetail, opts)
	handle(mux, BudgetServiceSetCategoryBudgetProcedure, s.SetCategoryBudget, opts)
	handle(mux, BudgetServiceSuggestBudgetProcedure, s.SuggestBudget, opts)
	return servicePath(BudgetServiceName), mux
}

// NewLedgerServiceHandler builds an HTTP handler for s and returns the path
// to mount it on.
func NewLedgerServiceHandler(s *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, LedgerServiceCreateExpenseProcedure, s.CreateExpense, opts)
	handle(mux, LedgerServiceDeleteExpenseProcedure, s.DeleteExpense, opts)
	handle(mux, LedgerServiceGetBalancesProcedure, s.GetBalances, opts)
	handle(mux, LedgerServiceGetSettlementGraphProcedure, s.GetSettlementGraph, opts)
	handle(mux, LedgerServiceListSettleableProcedure, s.ListSettleable, opts)
	handle(mux, LedgerServiceSettleUpProcedure, s.SettleUp, opts)
	handle(mux, LedgerServiceListActivityProcedure, s.ListActivity, opts)
	return servicePath(LedgerServiceName), mux
}

// NewSettingsServiceHandler builds an HTTP handler for s and returns the
// path to mount it on.
func NewSettingsServiceHandler(s *SettingsService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, SettingsServiceGetPreferencesProcedure, s.GetPreferences, opts)
	handle(mux, SettingsServiceUpdatePreferencesProcedure, s.UpdatePreferences, opts)
	handle(mux, SettingsServiceListCategoriesProcedure, s.ListCategories, opts)
	handle(mux, SettingsServiceCreateCategoryProcedure, s.CreateCategory, opts)
	handle(mux, SettingsServiceDeleteCategoryProcedure, s.DeleteCategory, opts)
	handle(mux, SettingsServiceCreateFriendProcedure, s.CreateFriend, opts)
	handle(mux, SettingsServiceCreateGroupProcedure, s.CreateGroup, opts)
	return servicePath(SettingsServiceName), mux
}

// Client is a typed Connect client for one procedure.
type Client[Req, Res any] struct {
	inner *connect.Client[Req, Res]
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	url := strings.TrimRight(baseURL, "/") + procedure
	return Client[Req, Res]{inner: connect.NewClient[Req, Res](httpClient, url, opts...)}
}

// Call sends req and returns the response message.
func (c Client[Req, Res]) Call(ctx context.Context, req *Req) (*Res, error) {
	resp, err := c.inner.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// CallWithHeader is Call with extra request headers, such as Authorization.
func (c Client[Req, Res]) CallWithHeader(ctx context.Context, req *Req, header http.Header) (*Res, error) {
	r := connect.NewRequest(req)
	for k, vs := range header {
		for _, v := range vs {
			r.Header().Add(k, v)
		}
	}
	resp, err := c.inner.CallUnary(ctx, r)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// BudgetServiceClient calls a remote BudgetService.
type BudgetServiceClient struct {
	GetMonthView      Client[GetMonthViewRequest, GetMonthViewResponse]
	GetCategoryDetail Client[GetCategoryDetailRequest, GetCategoryDetailResponse]
	SetCategoryBudget Client[SetCategoryBudgetRequest, SetCategoryBudgetResponse]
	SuggestBudget     Client[SuggestBudgetRequest, SuggestBudgetResponse]
}

func NewBudgetServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BudgetServiceClient {
	return &BudgetServiceClient{
		GetMonthView:      newClient[GetMonthViewRequest, GetMonthViewResponse](httpClient, baseURL, BudgetServiceGetMonthViewProcedure, opts),
		GetCategoryDetail: newClient[GetCategoryDetailRequest, GetCategoryDetailResponse](httpClient, baseURL, BudgetServiceGetCategoryDetailProcedure, opts),
		SetCategoryBudget: newClient[SetCategoryBudgetRequest, SetCategoryBudgetResponse](httpClient, baseURL, BudgetServiceSetCategoryBudgetProcedure, opts),
		SuggestBudget:     newClient[SuggestBudgetRequest, SuggestBudgetResponse](httpClient, baseURL, BudgetServiceSuggestBudgetProcedure, opts),
	}
}

// LedgerServiceClient calls a remote LedgerService.
type LedgerServiceClient struct {
	CreateExpense      Client[CreateExpenseRequest, CreateExpenseResponse]
	DeleteExpense      Client[DeleteExpenseRequest, DeleteExpenseResponse]
	GetBalances        Client[GetBalancesRequest, GetBalancesResponse]
	GetSettlementGraph Client[GetSettlementGraphRequest, GetSettlementGraphResponse]
	ListSettleable     Client[ListSettleableRequest, ListSettleableResponse]
	SettleUp           Client[SettleUpRequest, SettleUpResponse]
	ListActivity       Client[ListActivityRequest, ListActivityResponse]
}

func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	return &LedgerServiceClient{
		CreateExpense:      newClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL, LedgerServiceCreateExpenseProcedure, opts),
		DeleteExpense:      newClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL, LedgerServiceDeleteExpenseProcedure, opts),
		GetBalances:        newClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL, LedgerServiceGetBalancesProcedure, opts),
		GetSettlementGraph: newClient[GetSettlementGraphRequest, GetSettlementGraphResponse](httpClient, baseURL, LedgerServiceGetSettlementGraphProcedure, opts),
		ListSettleable:     newClient[ListSettleableRequest, ListSettleableResponse](httpClient, baseURL, LedgerServiceListSettleableProcedure, opts),
		SettleUp:           newClient[SettleUpRequest, SettleUpResponse](httpClient, baseURL, LedgerServiceSettleUpProcedure, opts),
		ListActivity:       newClient[ListActivityRequest, ListActivityResponse](httpClient, baseURL, LedgerServiceListActivityProcedure, opts),
	}
}

// SettingsServiceClient calls a remote SettingsService.
type SettingsServiceClient struct {
	GetPreferences    Client[GetPreferencesRequest, GetPreferencesResponse]
	UpdatePreferences Client[UpdatePreferencesRequest, UpdatePreferencesResponse]
	ListCategories    Client[ListCategoriesRequest, ListCategoriesResponse]
	CreateCategory    Client[CreateCategoryRequest, CreateCategoryResponse]
	DeleteCategory    Client[DeleteCategoryRequest, DeleteCategoryResponse]
	CreateFriend      Client[CreateFriendRequest, CreateFriendResponse]
	CreateGroup       Client[CreateGroupRequest, CreateGroupResponse]
}

func NewSettingsServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettingsServiceClient {
	return &SettingsServiceClient{
		GetPreferences:    newClient[GetPreferencesRequest, GetPreferencesResponse](httpClient, baseURL, SettingsServiceGetPreferencesProcedure, opts),
		UpdatePreferences: newClient[UpdatePreferencesRequest, UpdatePreferencesResponse](httpClient, baseURL, SettingsServiceUpdatePreferencesProcedure, opts),
		ListCategories:    newClient[ListCategoriesRequest, ListCategoriesResponse](httpClient, baseURL, SettingsServiceListCategoriesProcedure, opts),
		CreateCategory:    newClient[CreateCategoryRequest, CreateCategoryResponse](httpClient, baseURL, SettingsServiceCreateCategoryProcedure, opts),
		DeleteCategory:    newClient[DeleteCategoryRequest, DeleteCategoryResponse](httpClient, baseURL, SettingsServiceDeleteCategoryProcedure, opts),
		CreateFriend:      newClient[CreateFriendRequest, CreateFriendResponse](httpClient, baseURL, SettingsServiceCreateFriendProcedure, opts),
		CreateGroup:       newClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL, SettingsServiceCreateGroupProcedure, opts),
	}
}
