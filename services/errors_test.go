package services

import (
	"errors"
	"fmt"
	"testing"

	"menu-telegram/menuapi"
)

func TestKindOfAndUserMessage(t *testing.T) {
	reqErr := &menuapi.RequestError{Method: "POST", Path: "/auth/login", Status: 400, Message: "Incorrect email or password"}
	tests := []struct {
		name string
		err  error
		kind ErrorKind
		msg  string
	}{
		{"validation", NewValidation("Cart is empty."), KindValidation, "Cart is empty."},
		{"auth", NewAuthRequired("Please login before placing an order."), KindAuthRequired, "Please login before placing an order."},
		{"request", fmt.Errorf("login: %w", reqErr), KindRequestFailed, "Incorrect email or password"},
		{"session", NewSessionInvalid(reqErr), KindSessionInvalid, "Incorrect email or password"},
		{"other", errors.New("dial tcp: refused"), KindUnknown, "dial tcp: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf = %v, want %v", got, tt.kind)
			}
			if got := UserMessage(tt.err); got != tt.msg {
				t.Errorf("UserMessage = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestSessionInvalidUnwraps(t *testing.T) {
	reqErr := &menuapi.RequestError{Status: 401, Message: "Could not validate credentials"}
	err := NewSessionInvalid(reqErr)
	var target *menuapi.RequestError
	if !errors.As(err, &target) || target.Status != 401 {
		t.Errorf("errors.As through SessionInvalid failed: %v", err)
	}
}
