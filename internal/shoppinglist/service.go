package shoppinglist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/foodxchange/backend-grocer/internal/common"
	"github.com/foodxchange/backend-grocer/internal/compare"
)

// Service handles shopping list and item operations.
type Service struct {
	store    Store
	validate *validator.Validate
}

// NewService constructs a Service instance.
func NewService(store Store, validate *validator.Validate) (*Service, error) {
	if store == nil {
		return nil, errors.New("shoppinglist: store is required")
	}
	if validate == nil {
		validate = validator.New()
	}
	return &Service{store: store, validate: validate}, nil
}

// CreateListInput is the payload for creating a list.
type CreateListInput struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// UpdateListInput is the payload for renaming a list.
type UpdateListInput struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// AddItemInput is the payload for adding a product to a list.
type AddItemInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int32  `json:"quantity" validate:"omitempty,gt=0,lte=999"`
	Notes     string `json:"notes" validate:"omitempty,max=500"`
}

// UpdateItemInput is the payload for a partial item update.
type UpdateItemInput struct {
	Quantity  *int32  `json:"quantity" validate:"omitempty,gt=0,lte=999"`
	IsChecked *bool   `json:"is_checked"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

// ItemDTO is the public item payload.
type ItemDTO struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	IsChecked   bool   `json:"is_checked"`
	Notes       string `json:"notes,omitempty"`
}

// ListDTO is the public list payload.
type ListDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ItemCount int64     `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListDetailDTO is a list together with its items.
type ListDetailDTO struct {
	ListDTO
	Items []ItemDTO `json:"items"`
}

// CreateList creates a new list for the given owner.
func (s *Service) CreateList(ctx context.Context, userID string, in CreateListInput) (ListDTO, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return ListDTO{}, validationError(err)
	}
	list, err := s.store.CreateList(ctx, userID, in.Name)
	if err != nil {
		return ListDTO{}, fmt.Errorf("create list: %w", err)
	}
	return toListDTO(list), nil
}

// Lists returns the owner's lists.
func (s *Service) Lists(ctx context.Context, userID string) ([]ListDTO, error) {
	lists, err := s.store.ListLists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	out := make([]ListDTO, 0, len(lists))
	for _, l := range lists {
		out = append(out, toListDTO(l))
	}
	return out, nil
}

// GetList returns a list with its items.
func (s *Service) GetList(ctx context.Context, id int64) (ListDetailDTO, error) {
	list, err := s.store.GetList(ctx, id)
	if err != nil {
		if IsNoRows(err) {
			return ListDetailDTO{}, common.NotFound("shopping list not found", err)
		}
		return ListDetailDTO{}, fmt.Errorf("get list: %w", err)
	}
	items, err := s.store.ListItems(ctx, id)
	if err != nil {
		return ListDetailDTO{}, fmt.Errorf("list items: %w", err)
	}
	detail := ListDetailDTO{ListDTO: toListDTO(list), Items: make([]ItemDTO, 0, len(items))}
	for _, it := range items {
		detail.Items = append(detail.Items, toItemDTO(it))
	}
	return detail, nil
}

// UpdateList renames a list.
func (s *Service) UpdateList(ctx context.Context, id int64, in UpdateListInput) (ListDTO, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return ListDTO{}, validationError(err)
	}
	list, err := s.store.RenameList(ctx, id, in.Name)
	if err != nil {
		if IsNoRows(err) {
			return ListDTO{}, common.NotFound("shopping list not found", err)
		}
		return ListDTO{}, fmt.Errorf("rename list: %w", err)
	}
	return toListDTO(list), nil
}

// DeleteList removes a list and its items.
func (s *Service) DeleteList(ctx context.Context, id int64) error {
	deleted, err := s.store.DeleteList(ctx, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if !deleted {
		return common.NotFound("shopping list not found", nil)
	}
	return nil
}

// AddItem adds a product to a list, merging quantities on duplicates.
func (s *Service) AddItem(ctx context.Context, listID int64, in AddItemInput) (ItemDTO, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if err := s.validate.Struct(in); err != nil {
		return ItemDTO{}, validationError(err)
	}
	if err := s.requireList(ctx, listID); err != nil {
		return ItemDTO{}, err
	}
	exists, err := s.store.ProductExists(ctx, in.ProductID)
	if err != nil {
		return ItemDTO{}, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return ItemDTO{}, common.BadRequest("product_id", "unknown product", nil)
	}
	item, err := s.store.UpsertItem(ctx, listID, in.ProductID, in.Quantity, strings.TrimSpace(in.Notes))
	if err != nil {
		return ItemDTO{}, fmt.Errorf("add item: %w", err)
	}
	return toItemDTO(item), nil
}

// UpdateItem applies a partial update to one item.
func (s *Service) UpdateItem(ctx context.Context, listID, itemID int64, in UpdateItemInput) (ItemDTO, error) {
	if err := s.validate.Struct(in); err != nil {
		return ItemDTO{}, validationError(err)
	}
	item, err := s.store.UpdateItem(ctx, listID, itemID, ItemPatch{
		Quantity:  in.Quantity,
		IsChecked: in.IsChecked,
		Notes:     in.Notes,
	})
	if err != nil {
		if IsNoRows(err) {
			return ItemDTO{}, common.NotFound("list item not found", err)
		}
		return ItemDTO{}, fmt.Errorf("update item: %w", err)
	}
	return toItemDTO(item), nil
}

// RemoveItem deletes one item from a list.
func (s *Service) RemoveItem(ctx context.Context, listID, itemID int64) error {
	deleted, err := s.store.DeleteItem(ctx, listID, itemID)
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	if !deleted {
		return common.NotFound("list item not found", nil)
	}
	return nil
}

// ClearChecked removes every checked item and reports how many were removed.
func (s *Service) ClearChecked(ctx context.Context, listID int64) (int64, error) {
	if err := s.requireList(ctx, listID); err != nil {
		return 0, err
	}
	removed, err := s.store.ClearChecked(ctx, listID)
	if err != nil {
		return 0, fmt.Errorf("clear checked: %w", err)
	}
	return removed, nil
}

// UncheckAll resets the checked flag on every item and reports how many changed.
func (s *Service) UncheckAll(ctx context.Context, listID int64) (int64, error) {
	if err := s.requireList(ctx, listID); err != nil {
		return 0, err
	}
	updated, err := s.store.UncheckAll(ctx, listID)
	if err != nil {
		return 0, fmt.Errorf("uncheck all: %w", err)
	}
	return updated, nil
}

// Items implements compare.ListSource. A missing list maps to the comparison
// not-found sentinel so the compare handler can answer 404.
func (s *Service) Items(ctx context.Context, listID int64) ([]compare.ListItem, error) {
	if _, err := s.store.GetList(ctx, listID); err != nil {
		if IsNoRows(err) {
			return nil, compare.ErrListNotFound
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	items, err := s.store.ListItems(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := make([]compare.ListItem, 0, len(items))
	for _, it := range items {
		out = append(out, compare.ListItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out, nil
}

func (s *Service) requireList(ctx context.Context, listID int64) error {
	if _, err := s.store.GetList(ctx, listID); err != nil {
		if IsNoRows(err) {
			return common.NotFound("shopping list not found", err)
		}
		return fmt.Errorf("get list: %w", err)
	}
	return nil
}

func validationError(err error) error {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		field := strings.ToLower(fields[0].Field())
		return common.BadRequest(field, fmt.Sprintf("failed %q validation", fields[0].Tag()), err)
	}
	return common.BadRequest("body", "invalid payload", err)
}

func toListDTO(l List) ListDTO {
	return ListDTO{ID: l.ID, Name: l.Name, ItemCount: l.ItemCount, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}

func toItemDTO(it Item) ItemDTO {
	return ItemDTO{
		ID:          it.ID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
		IsChecked:   it.IsChecked,
		Notes:       it.Notes,
	}
}
