package services

import (
	"context"
	"fmt"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/cache"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/repositories"
)

const vehicleCacheNS = "vehicles"

// VehicleService fronts the vehicle repository with a short-lived list
// cache. Mutations drop the whole namespace, list keys depend on the query.
type VehicleService struct {
	Repo  repositories.VehicleRepository
	Cache *cache.Cache
}

func (s VehicleService) List(ctx context.Context, q string, limit, offset int) ([]models.Vehicle, error) {
	if s.Cache == nil {
		return s.Repo.List(ctx, q, limit, offset)
	}

	key := fmt.Sprintf("list:%s:%d:%d", q, limit, offset)
	v, err := s.Cache.GetOrSet(ctx, vehicleCacheNS, key, func(ctx context.Context) (any, error) {
		return s.Repo.List(ctx, q, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	if vehicles, ok := v.([]models.Vehicle); ok {
		return vehicles, nil
	}
	return s.Repo.List(ctx, q, limit, offset)
}

func (s VehicleService) Get(ctx context.Context, id int64) (models.Vehicle, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s VehicleService) Create(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	id, err := s.Repo.Create(ctx, v)
	if err != nil {
		return v, err
	}
	v.ID = id
	s.invalidate()
	return v, nil
}

func (s VehicleService) Update(ctx context.Context, v models.Vehicle) error {
	if err := s.Repo.Update(ctx, v); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s VehicleService) Delete(ctx context.Context, id int64) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s VehicleService) invalidate() {
	if s.Cache != nil {
		s.Cache.ClearNamespace(vehicleCacheNS)
	}
}
