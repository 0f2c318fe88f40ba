package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/loankeeper/internal/common"
	"github.com/dmitrijs2005/loankeeper/internal/docstore"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/models"
)

// LenderService manages the lender master records.
//
// Deleting a lender does not cascade to its loans or payments: existing
// records keep their denormalized lender name and stay visible.
type LenderService struct {
	store  docstore.Store
	logger logging.Logger
}

func NewLenderService(store docstore.Store, logger logging.Logger) *LenderService {
	return &LenderService{store: store, logger: logger.With("component", "lenders")}
}

type LenderInput struct {
	Name     string
	Phone    string
	Address  string
	Type     models.LenderType
	ImageKey string
}

func (in *LenderInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return common.ErrNameRequired
	}
	if in.Type == "" {
		in.Type = models.LenderTypeIndividual
	}
	return nil
}

func (s *LenderService) Create(ctx context.Context, userID string, in LenderInput) (*models.Lender, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	lender := &models.Lender{
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Phone:     in.Phone,
		Address:   in.Address,
		Type:      in.Type,
		ImageKey:  in.ImageKey,
		CreatedAt: time.Now().UTC(),
	}
	data, err := docstore.Encode(lender)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, models.CollectionLenders, data)
	if err != nil {
		return nil, fmt.Errorf("create lender: %w", err)
	}
	lender.ID = id
	return lender, nil
}

func (s *LenderService) Update(ctx context.Context, userID, lenderID string, in LenderInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	if _, err := s.Get(ctx, userID, lenderID); err != nil {
		return err
	}

	patch := map[string]any{
		"name":    strings.TrimSpace(in.Name),
		"phone":   in.Phone,
		"address": in.Address,
		"type":    in.Type,
	}
	if in.ImageKey != "" {
		patch["imageKey"] = in.ImageKey
	}
	return s.store.Update(ctx, models.CollectionLenders, lenderID, patch)
}

// Delete removes the lender record only; dependent loans and payments
// are left in place.
func (s *LenderService) Delete(ctx context.Context, userID, lenderID string) error {
	if _, err := s.Get(ctx, userID, lenderID); err != nil {
		return err
	}
	return s.store.Delete(ctx, models.CollectionLenders, lenderID)
}

func (s *LenderService) Get(ctx context.Context, userID, lenderID string) (*models.Lender, error) {
	q := docstore.C(models.CollectionLenders).
		Where(docstore.Eq("id", lenderID), docstore.Eq("userId", userID))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.ErrorNotFound
	}
	lender := &models.Lender{}
	if err := docs[0].Decode(lender); err != nil {
		return nil, err
	}
	return lender, nil
}

// List returns the user's lenders sorted by name. Sorting happens here,
// after the fetch: the store contract delivers unsorted sets.
func (s *LenderService) List(ctx context.Context, userID string) ([]models.Lender, error) {
	q := docstore.C(models.CollectionLenders).Where(docstore.Eq("userId", userID))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	lenders, err := docstore.DecodeAll[models.Lender](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(lenders, func(i, j int) bool {
		return strings.ToLower(lenders[i].Name) < strings.ToLower(lenders[j].Name)
	})
	return lenders, nil
}

// IsNotFound reports whether err is the store-level not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}
