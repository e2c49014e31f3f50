package util_test

import (
	"testing"
	"time"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  model.Student,
	}
	user.ID = 7

	token, err := util.GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := util.ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != 7 || claims.Name != "Alice" || claims.Role != model.Student {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	user := &model.User{Name: "Alice", Email: "alice@example.com"}
	user.ID = 7

	token, err := util.GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := util.ParseJWT(token, "other-secret"); err == nil {
		t.Fatal("expected parse to fail with the wrong secret")
	}
}
