package auth

import (
	"context"
	"testing"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		UserID:       1,
		SessionToken: "tok",
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.UserID != 1 {
		t.Errorf("UserID = %d, want 1", got.UserID)
	}
	if got.SessionToken != "tok" {
		t.Errorf("SessionToken = %q, want %q", got.SessionToken, "tok")
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestUserID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 42})
	if UserID(ctx) != 42 {
		t.Errorf("UserID = %d, want 42", UserID(ctx))
	}
}

func TestUserIDMissing(t *testing.T) {
	if UserID(context.Background()) != 0 {
		t.Errorf("UserID = %d, want 0 for missing context", UserID(context.Background()))
	}
}
