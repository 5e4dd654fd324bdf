package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitty/internal/catalog"
	"github.com/mmynk/splitty/internal/models"
	"github.com/mmynk/splitty/internal/storage"
)

// SettingsService manages preferences, categories, friends and groups.
type SettingsService struct {
	store storage.Store
	opts  Options
}

// NewSettingsService creates a new SettingsService with the given storage backend.
func NewSettingsService(store storage.Store, opts Options) *SettingsService {
	return &SettingsService{store: store, opts: opts.withDefaults()}
}

// GetPreferences returns the owner's preferences.
func (s *SettingsService) GetPreferences(ctx context.Context, req *connect.Request[GetPreferencesRequest]) (*connect.Response[GetPreferencesResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := s.store.GetPreferences(ctx, ownerID)
	if err != nil {
		return nil, toConnectError(ctx, "GetPreferences", err)
	}

	return connect.NewResponse(&GetPreferencesResponse{Preferences: preferencesFromModel(prefs)}), nil
}

// UpdatePreferences replaces the owner's preferences.
func (s *SettingsService) UpdatePreferences(ctx context.Context, req *connect.Request[UpdatePreferencesRequest]) (*connect.Response[UpdatePreferencesResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	in := req.Msg.Preferences
	slog.Info("UpdatePreferences request received",
		"owner_id", ownerID,
		"hidden_count", len(in.HiddenCategories),
		"order_count", len(in.CategoryOrder),
		"rollover_enabled", in.RolloverEnabled,
	)

	prefs := models.Preferences{
		HiddenBudgetCategories: models.HiddenSet(in.HiddenCategories),
		CategoryOrder:          in.CategoryOrder,
		RolloverEnabled:        in.RolloverEnabled,
	}
	if err := s.store.SavePreferences(ctx, ownerID, prefs); err != nil {
		return nil, toConnectError(ctx, "UpdatePreferences", err)
	}

	return connect.NewResponse(&UpdatePreferencesResponse{Preferences: preferencesFromModel(prefs)}), nil
}

// ListCategories returns the general category followed by the owner's own.
func (s *SettingsService) ListCategories(ctx context.Context, req *connect.Request[ListCategoriesRequest]) (*connect.Response[ListCategoriesResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, toConnectError(ctx, "ListCategories", err)
	}

	all := catalog.New(categories).All()
	resp := &ListCategoriesResponse{Categories: make([]Category, 0, len(all))}
	for _, c := range all {
		resp.Categories = append(resp.Categories, categoryFromModel(c))
	}

	return connect.NewResponse(resp), nil
}

// CreateCategory adds a category. IDs are lower case and unique per owner.
func (s *SettingsService) CreateCategory(ctx context.Context, req *connect.Request[CreateCategoryRequest]) (*connect.Response[CreateCategoryResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	in := req.Msg.Category
	c := models.Category{
		ID:    strings.ToLower(strings.TrimSpace(in.ID)),
		Label: strings.TrimSpace(in.Label),
		Color: in.Color,
		Icon:  in.Icon,
	}

	slog.Info("CreateCategory request received", "owner_id", ownerID, "category_id", c.ID)

	if c.ID == "" {
		return nil, toConnectError(ctx, "CreateCategory", &models.ValidationError{Field: "id", Message: "category id is required"})
	}
	if c.ID == models.GeneralCategoryID {
		return nil, toConnectError(ctx, "CreateCategory", &models.ValidationError{Field: "id", Message: "general is reserved"})
	}

	existing, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, toConnectError(ctx, "CreateCategory", err)
	}
	for _, e := range existing {
		if e.ID == c.ID {
			return nil, connect.NewError(connect.CodeAlreadyExists, fmt.Errorf("category %s already exists", c.ID))
		}
	}

	if err := s.store.SaveCategory(ctx, ownerID, c); err != nil {
		return nil, toConnectError(ctx, "CreateCategory", err)
	}

	// Fill in the derived label
	created := catalog.New([]models.Category{c}).ByID(c.ID)
	return connect.NewResponse(&CreateCategoryResponse{Category: categoryFromModel(created)}), nil
}

// DeleteCategory removes a category. Expenses keep their reference, which
// then displays as general.
func (s *SettingsService) DeleteCategory(ctx context.Context, req *connect.Request[DeleteCategoryRequest]) (*connect.Response[DeleteCategoryResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("DeleteCategory request received", "owner_id", ownerID, "category_id", req.Msg.CategoryID)

	if err := catalog.CheckDeletable(req.Msg.CategoryID); err != nil {
		return nil, toConnectError(ctx, "DeleteCategory", err)
	}
	if err := s.store.DeleteCategory(ctx, ownerID, req.Msg.CategoryID); err != nil {
		return nil, toConnectError(ctx, "DeleteCategory", err)
	}

	return connect.NewResponse(&DeleteCategoryResponse{}), nil
}

// CreateFriend adds a friend with a zero balance.
func (s *SettingsService) CreateFriend(ctx context.Context, req *connect.Request[CreateFriendRequest]) (*connect.Response[CreateFriendResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	slog.Info("CreateFriend request received", "owner_id", ownerID, "name", name)

	if name == "" {
		return nil, toConnectError(ctx, "CreateFriend", &models.ValidationError{Field: "name", Message: "name is required"})
	}

	friend := &models.Friend{Name: name, LinkedUserID: req.Msg.LinkedUserID}
	if err := s.store.CreateFriend(ctx, ownerID, friend); err != nil {
		return nil, toConnectError(ctx, "CreateFriend", err)
	}

	slog.Info("Friend created", "owner_id", ownerID, "friend_id", friend.ID)

	return connect.NewResponse(&CreateFriendResponse{Friend: friendFromModel(s.opts.Currency, *friend)}), nil
}

// CreateGroup creates a new group.
func (s *SettingsService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	slog.Info("CreateGroup request received",
		"owner_id", ownerID,
		"name", name,
		"members_count", len(req.Msg.Members),
	)

	if name == "" {
		return nil, toConnectError(ctx, "CreateGroup", &models.ValidationError{Field: "name", Message: "name is required"})
	}

	// Save to storage (generates ID and CreatedAt)
	group := &models.Group{Name: name, Members: req.Msg.Members}
	if err := s.store.CreateGroup(ctx, ownerID, group); err != nil {
		return nil, toConnectError(ctx, "CreateGroup", err)
	}

	slog.Info("Group created", "owner_id", ownerID, "group_id", group.ID)

	return connect.NewResponse(&CreateGroupResponse{Group: groupFromModel(*group)}), nil
}
