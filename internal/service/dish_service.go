package service

import (
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/repository"
	"context"
	"errors"
)

// DishService exposes every program's menu items as one browsable catalog.
type DishService interface {
	ListDishes(ctx context.Context, category string) ([]domain.Dish, error)
	GetDish(ctx context.Context, dishID string) (*domain.Dish, error)
}

type dishService struct {
	programRepo repository.ProgramRepository
}

func NewDishService(programRepo repository.ProgramRepository) DishService {
	return &dishService{programRepo: programRepo}
}

// ListDishes flattens the catalog, programs by name then menu order.
// category accepts the current names and the legacy ones; "" or "all" lists everything.
func (s *dishService) ListDishes(ctx context.Context, category string) ([]domain.Dish, error) {
	cat, ok := domain.ParseMealCategory(category)
	if !ok {
		return nil, ErrValidationFailed
	}

	var (
		programs []domain.Program
		err      error
	)
	if cat == "" {
		programs, err = s.programRepo.List(ctx)
	} else {
		programs, err = s.programRepo.ListByMenuCategory(ctx, cat)
	}
	if err != nil {
		return nil, err
	}

	dishes := []domain.Dish{}
	for i := range programs {
		dishes = append(dishes, programs[i].Dishes(cat)...)
	}
	return dishes, nil
}

func (s *dishService) GetDish(ctx context.Context, dishID string) (*domain.Dish, error) {
	programID, itemID, err := domain.ParseDishID(dishID)
	if err != nil {
		return nil, ErrValidationFailed
	}
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}
	item, ok := program.MenuItemByID(itemID)
	if !ok {
		return nil, ErrDishNotFound
	}
	return &domain.Dish{
		ID:          domain.DishID(program.ID, item.ID),
		ProgramID:   program.ID,
		ProgramName: program.Name,
		Item:        item,
	}, nil
}
