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

func TestSearchAppliesPaginationDefaults(t *testing.T) {
	props := newStubPropertyRepo()
	props.listTotal = 25
	svc := NewPropertyService(props, newStubUserRepo(), zerolog.Nop())

	result, err := svc.Search(context.Background(), ports.ListFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if props.lastFilter.Page != 1 || props.lastFilter.Limit != 10 {
		t.Fatalf("repo saw page=%d limit=%d, want 1/10", props.lastFilter.Page, props.lastFilter.Limit)
	}
	if result.Pages != 3 {
		t.Fatalf("pages = %d, want ceil(25/10) = 3", result.Pages)
	}
}

func TestSearchCapsLimit(t *testing.T) {
	props := newStubPropertyRepo()
	svc := NewPropertyService(props, newStubUserRepo(), zerolog.Nop())

	if _, err := svc.Search(context.Background(), ports.ListFilter{Limit: 1000}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if props.lastFilter.Limit != 100 {
		t.Fatalf("repo saw limit=%d, want capped 100", props.lastFilter.Limit)
	}
}

func TestSearchResolvesAgents(t *testing.T) {
	agent := &domain.User{ID: primitive.NewObjectID(), Name: "Ana", Email: "ana@example.com"}
	orphanAgent := primitive.NewObjectID()
	props := newStubPropertyRepo(
		&domain.Property{AgentID: agent.ID},
		&domain.Property{AgentID: orphanAgent},
	)
	svc := NewPropertyService(props, newStubUserRepo(agent), zerolog.Nop())

	result, err := svc.Search(context.Background(), ports.ListFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Properties) != 2 {
		t.Fatalf("got %d properties, want 2", len(result.Properties))
	}
	for _, v := range result.Properties {
		if v.Property.AgentID == agent.ID {
			if v.Agent.Name != "Ana" || v.Agent.Email != "ana@example.com" {
				t.Fatalf("agent not resolved: %+v", v.Agent)
			}
		} else if v.Agent.Name != "" {
			t.Fatalf("deleted agent should resolve empty, got %+v", v.Agent)
		}
	}
}

func TestGetRejectsMalformedID(t *testing.T) {
	svc := NewPropertyService(newStubPropertyRepo(), newStubUserRepo(), zerolog.Nop())

	_, err := svc.Get(context.Background(), "zzz")
	if !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("err = %v, want ErrInvalidID", err)
	}
}

func TestNearbyDefaultsAndMissingCoordinates(t *testing.T) {
	noCoords := &domain.Property{ID: primitive.NewObjectID()}
	withCoords := &domain.Property{
		ID:       primitive.NewObjectID(),
		Location: domain.Location{Coordinates: []float64{77.59, 12.97}},
	}
	props := newStubPropertyRepo(noCoords, withCoords)
	svc := NewPropertyService(props, newStubUserRepo(), zerolog.Nop())

	if _, err := svc.Nearby(context.Background(), noCoords.ID.Hex(), 0, 0); !errors.Is(err, domain.ErrMissingCoordinates) {
		t.Fatalf("err = %v, want ErrMissingCoordinates", err)
	}

	result, err := svc.Nearby(context.Background(), withCoords.ID.Hex(), 0, 0)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if props.nearRadius != 5 {
		t.Fatalf("radius = %v, want default 5", props.nearRadius)
	}
	if result.RadiusKm != 5 {
		t.Fatalf("result radius = %v, want 5", result.RadiusKm)
	}
	for _, v := range result.Properties {
		if v.Property.ID == withCoords.ID {
			t.Fatal("nearby included the reference listing itself")
		}
	}
}

func TestListByAgentRequiresSelfOrAdmin(t *testing.T) {
	agentID := primitive.NewObjectID()
	svc := NewPropertyService(newStubPropertyRepo(), newStubUserRepo(), zerolog.Nop())

	stranger := ports.Actor{ID: primitive.NewObjectID(), Role: domain.RoleUser}
	if _, err := svc.ListByAgent(context.Background(), stranger, agentID.Hex()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger err = %v, want ErrForbidden", err)
	}

	self := ports.Actor{ID: agentID, Role: domain.RoleUser}
	if _, err := svc.ListByAgent(context.Background(), self, agentID.Hex()); err != nil {
		t.Fatalf("self: %v", err)
	}

	admin := ports.Actor{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}
	if _, err := svc.ListByAgent(context.Background(), admin, agentID.Hex()); err != nil {
		t.Fatalf("admin: %v", err)
	}
}

func TestUpdateAndDeleteEnforceOwnership(t *testing.T) {
	owner := primitive.NewObjectID()
	prop := &domain.Property{ID: primitive.NewObjectID(), AgentID: owner}
	props := newStubPropertyRepo(prop)
	svc := NewPropertyService(props, newStubUserRepo(), zerolog.Nop())

	stranger := ports.Actor{ID: primitive.NewObjectID(), Role: domain.RoleUser}
	title := "new title"
	if _, err := svc.Update(context.Background(), stranger, prop.ID.Hex(), ports.PropertyUpdate{Title: &title}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger update err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(context.Background(), stranger, prop.ID.Hex()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger delete err = %v, want ErrForbidden", err)
	}

	self := ports.Actor{ID: owner, Role: domain.RoleUser}
	updated, err := svc.Update(context.Background(), self, prop.ID.Hex(), ports.PropertyUpdate{Title: &title})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "new title" {
		t.Fatalf("title = %q, want %q", updated.Title, "new title")
	}
	if err := svc.Delete(context.Background(), self, prop.ID.Hex()); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestCreateDefaultsCoordinates(t *testing.T) {
	props := newStubPropertyRepo()
	svc := NewPropertyService(props, newStubUserRepo(), zerolog.Nop())

	created, err := svc.Create(context.Background(), ports.CreatePropertyInput{
		Title:   "bare listing",
		Price:   100,
		Type:    domain.TypeApartment,
		AgentID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.Location.Coordinates) != 2 {
		t.Fatalf("coordinates = %v, want defaulted [0 0]", created.Location.Coordinates)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}
}
