package fakeserver

import (
	"context"
	"errors"
	"time"
)

// FruitService covers the supported method layouts.
type FruitService struct{}

func (f *FruitService) Apple() string {
	return "Apple"
}

func (f *FruitService) Banana() error {
	return nil
}

func (f *FruitService) Cherry() (string, error) {
	return "Cherry", nil
}

func (f *FruitService) Durian() error {
	return errors.New("durian failure")
}

// Person is a record returned by PeopleService.
type Person struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// PeopleService returns people records.
type PeopleService struct {
	People []Person
}

func (p *PeopleService) GetUser(id int) (*Person, error) {
	if id < 0 || id >= len(p.People) {
		return nil, &ErrorObject{Code: 404, Message: "no such user", Data: id}
	}
	return &p.People[id], nil
}

func (p *PeopleService) ListUsers() []Person {
	return p.People
}

// EchoService returns its arguments.
type EchoService struct{}

func (e *EchoService) Echo(s string) string {
	return s
}

func (e *EchoService) Sum(a, b float64) float64 {
	return a + b
}

// Sleep waits for ms milliseconds before answering, to reorder replies.
func (e *EchoService) Sleep(ctx context.Context, ms int) (int, error) {
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return ms, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
