package bookingrepo

import (
	"context"
	"testing"
	"time"

	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/ports/out/bookingrepo"
)

func TestRepo_WithoutMemberLookupAcceptsAnyMember(t *testing.T) {
	t.Parallel()

	r := NewRepo(nil)
	d, _ := domain.ParseMealDate("2024-01-02")
	if err := r.Create(context.Background(), bookingrepo.Booking{ID: "b1", MemberID: "m1", MealName: "Soup", MealDate: d}); err != nil {
		t.Fatalf("Create() err=%v", err)
	}
}

func TestRepo_CreateRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	r := NewRepo(nil)
	d, _ := domain.ParseMealDate("2024-01-02")
	b := bookingrepo.Booking{ID: "b1", MemberID: "m1", MealName: "Soup", MealDate: d, BookedOn: time.Unix(1, 0)}
	if err := r.Create(context.Background(), b); err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	if err := r.Create(context.Background(), b); err != bookingrepo.ErrAlreadyExists {
		t.Fatalf("Create(dup) err=%v, want %v", err, bookingrepo.ErrAlreadyExists)
	}
	n, _ := r.CountByMember(context.Background(), "m1")
	if n != 1 {
		t.Fatalf("CountByMember()=%d, want 1", n)
	}
}

func TestRepo_ListOrdersByDateThenBookedOnThenID(t *testing.T) {
	t.Parallel()

	r := NewRepo(nil)
	d1, _ := domain.ParseMealDate("2024-01-01")
	d2, _ := domain.ParseMealDate("2024-01-02")
	t0 := time.Unix(100, 0).UTC()
	_ = r.Create(context.Background(), bookingrepo.Booking{ID: "b3", MemberID: "m1", MealDate: d2, BookedOn: t0})
	_ = r.Create(context.Background(), bookingrepo.Booking{ID: "b2", MemberID: "m1", MealDate: d1, BookedOn: t0.Add(time.Second)})
	_ = r.Create(context.Background(), bookingrepo.Booking{ID: "b1", MemberID: "m1", MealDate: d1, BookedOn: t0.Add(time.Second)})
	_ = r.Create(context.Background(), bookingrepo.Booking{ID: "b0", MemberID: "m1", MealDate: d1, BookedOn: t0})

	got, err := r.ListByMember(context.Background(), "m1")
	if err != nil {
		t.Fatalf("ListByMember() err=%v", err)
	}
	want := []domain.BookingID{"b0", "b1", "b2", "b3"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("ListByMember()[%d]=%q, want %q", i, got[i].ID, id)
		}
	}
}
