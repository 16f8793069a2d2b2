package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"multipos/internal/apperr"
	"multipos/internal/dto"
	"multipos/internal/model"
	"multipos/internal/repository"
)

type ShopService interface {
	Create(ctx context.Context, req dto.CreateShopRequest) (*dto.ShopResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ShopResponse, error)
	List(ctx context.Context, filter dto.ShopFilter) (*dto.ListResponse[dto.ShopResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateShopRequest) (*dto.ShopResponse, error)
	// Delete removes an unreferenced shop. A shop that still has inventory
	// records or sales is only deactivated.
	Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteShopResponse, error)
}

type shopService struct {
	repo      repository.ShopRepository
	inventory repository.InventoryRepository
	sales     repository.SaleRepository
}

func NewShopService(repo repository.ShopRepository, inventory repository.InventoryRepository, sales repository.SaleRepository) ShopService {
	return &shopService{repo: repo, inventory: inventory, sales: sales}
}

func mapShop(s *model.Shop) *dto.ShopResponse {
	return &dto.ShopResponse{
		ID:       s.ID.String(),
		Name:     s.Name,
		Slug:     s.Slug,
		Address:  s.Address,
		Phone:    s.Phone,
		IsActive: s.IsActive,
	}
}

func (s *shopService) slugFor(ctx context.Context, name string, self *uuid.UUID) (string, error) {
	sl := slug.Make(name)
	if sl == "" {
		return "", apperr.NewFieldValidation("name", "must contain letters or digits")
	}
	taken, err := s.repo.ExistsBySlug(ctx, sl, self)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperr.NewDuplicateKey("shop", "a shop with that name already exists")
	}
	return sl, nil
}

func (s *shopService) Create(ctx context.Context, req dto.CreateShopRequest) (*dto.ShopResponse, error) {
	sl, err := s.slugFor(ctx, req.Name, nil)
	if err != nil {
		return nil, err
	}
	shop := &model.Shop{
		Name:     req.Name,
		Slug:     sl,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, err
	}
	log.Info().Str("shop_id", shop.ID.String()).Str("slug", sl).Msg("shop created")
	return mapShop(shop), nil
}

func (s *shopService) Get(ctx context.Context, id uuid.UUID) (*dto.ShopResponse, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapShop(shop), nil
}

func (s *shopService) List(ctx context.Context, filter dto.ShopFilter) (*dto.ListResponse[dto.ShopResponse], error) {
	filter.Pagination.Normalize()
	shops, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ShopResponse, len(shops))
	for i := range shops {
		data[i] = *mapShop(&shops[i])
	}
	return &dto.ListResponse[dto.ShopResponse]{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *shopService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateShopRequest) (*dto.ShopResponse, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && *req.Name != shop.Name {
		sl, err := s.slugFor(ctx, *req.Name, &id)
		if err != nil {
			return nil, err
		}
		shop.Name, shop.Slug = *req.Name, sl
	}
	if req.Address != nil {
		shop.Address = req.Address
	}
	if req.Phone != nil {
		shop.Phone = req.Phone
	}
	if req.IsActive != nil {
		shop.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return mapShop(shop), nil
}

func (s *shopService) Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteShopResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	records, err := s.inventory.CountByShop(ctx, id)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.CountByShop(ctx, id)
	if err != nil {
		return nil, err
	}

	if records > 0 || sales > 0 {
		if err := s.repo.Deactivate(ctx, id); err != nil {
			return nil, err
		}
		log.Info().
			Str("shop_id", id.String()).
			Int64("inventory_records", records).
			Int64("sales", sales).
			Msg("shop referenced, deactivated instead of deleted")
		return &dto.DeleteShopResponse{ID: id.String(), Deactivated: true}, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	log.Info().Str("shop_id", id.String()).Msg("shop deleted")
	return &dto.DeleteShopResponse{ID: id.String(), Deactivated: false}, nil
}
