package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

func TestToggleFavoriteIsAnInvolution(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID()}
	prop := &domain.Property{ID: primitive.NewObjectID()}
	users := newStubUserRepo(user)
	props := newStubPropertyRepo(prop)
	svc := NewCollectionService(users, props, zerolog.Nop())

	first, err := svc.ToggleFavorite(context.Background(), user.ID, prop.ID.Hex())
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if first.Action != ports.ActionAdded {
		t.Fatalf("first action = %q, want added", first.Action)
	}
	if len(first.List) != 1 || first.List[0] != prop.ID {
		t.Fatalf("list after add = %v, want [%s]", first.List, prop.ID.Hex())
	}

	second, err := svc.ToggleFavorite(context.Background(), user.ID, prop.ID.Hex())
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second.Action != ports.ActionRemoved {
		t.Fatalf("second action = %q, want removed", second.Action)
	}
	if len(second.List) != 0 {
		t.Fatalf("list after remove = %v, want empty", second.List)
	}
}

func TestToggleComparisonEnforcesCap(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID()}
	for i := 0; i < domain.MaxComparisons; i++ {
		user.Comparisons = append(user.Comparisons, primitive.NewObjectID())
	}
	users := newStubUserRepo(user)
	svc := NewCollectionService(users, newStubPropertyRepo(), zerolog.Nop())

	_, err := svc.ToggleComparison(context.Background(), user.ID, primitive.NewObjectID().Hex())
	if !errors.Is(err, domain.ErrComparisonLimit) {
		t.Fatalf("err = %v, want ErrComparisonLimit", err)
	}
	if len(user.Comparisons) != domain.MaxComparisons {
		t.Fatalf("list length = %d, want unchanged %d", len(user.Comparisons), domain.MaxComparisons)
	}

	// Removing a full member still works.
	result, err := svc.ToggleComparison(context.Background(), user.ID, user.Comparisons[0].Hex())
	if err != nil {
		t.Fatalf("remove at cap: %v", err)
	}
	if result.Action != ports.ActionRemoved {
		t.Fatalf("action = %q, want removed", result.Action)
	}
}

// duplicateAddUserRepo simulates a concurrent request winning the add: the id
// lands in the list but the guarded update reports no modification.
type duplicateAddUserRepo struct {
	*stubUserRepo
}

func (r *duplicateAddUserRepo) AddToList(ctx context.Context, userID primitive.ObjectID, list ports.ListName, propertyID primitive.ObjectID, maxLen int) (bool, error) {
	if _, err := r.stubUserRepo.AddToList(ctx, userID, list, propertyID, maxLen); err != nil {
		return false, err
	}
	return false, nil
}

func TestToggleFavoriteConcurrentDuplicateAddIsNotACapError(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID()}
	prop := &domain.Property{ID: primitive.NewObjectID()}
	users := &duplicateAddUserRepo{stubUserRepo: newStubUserRepo(user)}
	svc := NewCollectionService(users, newStubPropertyRepo(prop), zerolog.Nop())

	result, err := svc.ToggleFavorite(context.Background(), user.ID, prop.ID.Hex())
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if result.Action != ports.ActionAdded {
		t.Fatalf("action = %q, want added", result.Action)
	}
	if len(result.List) != 1 || result.List[0] != prop.ID {
		t.Fatalf("list = %v, want [%s]", result.List, prop.ID.Hex())
	}
}

func TestToggleRejectsMalformedPropertyID(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID()}
	svc := NewCollectionService(newStubUserRepo(user), newStubPropertyRepo(), zerolog.Nop())

	_, err := svc.ToggleFavorite(context.Background(), user.ID, "not-an-id")
	if !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("err = %v, want ErrInvalidID", err)
	}
}

func TestToggleUnknownUser(t *testing.T) {
	svc := NewCollectionService(newStubUserRepo(), newStubPropertyRepo(), zerolog.Nop())

	_, err := svc.ToggleFavorite(context.Background(), primitive.NewObjectID(), primitive.NewObjectID().Hex())
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestFavoritesSkipsDeletedListings(t *testing.T) {
	kept := &domain.Property{ID: primitive.NewObjectID(), Title: "still here"}
	deleted := primitive.NewObjectID()
	user := &domain.User{
		ID:        primitive.NewObjectID(),
		Favorites: []primitive.ObjectID{deleted, kept.ID},
	}
	svc := NewCollectionService(newStubUserRepo(user), newStubPropertyRepo(kept), zerolog.Nop())

	props, err := svc.Favorites(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	if len(props) != 1 || props[0].ID != kept.ID {
		t.Fatalf("favorites = %v, want only the surviving listing", props)
	}
}
