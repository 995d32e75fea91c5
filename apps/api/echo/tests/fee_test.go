package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/trezcool/chekechea/core/billing"
	testutil "github.com/trezcool/chekechea/tests"
)

func Test_feeApi_create(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")
	child := testutil.CreateChild(t, env.enrollRepo, parent.ID, "Amara", "Okafor")

	t.Run("admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/fees", env.authCookie(t, parent), []byte(`{}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("raises the fee and notifies the parent", func(t *testing.T) {
		body := []byte(`{"student_id": 1, "description": "Monthly tuition", "amount": "1500.50", "due_date": "2026-10-01"}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/fees", env.authCookie(t, admin), body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var fee billing.Fee
		decodeBody(t, rec, &fee)
		if fee.StudentID != child.ID || fee.Status != billing.FeePending {
			t.Errorf("unexpected fee: %+v", fee)
		}
		if !fee.Amount.Equal(decimal.RequireFromString("1500.50")) {
			t.Errorf("amount = %v; want 1500.50", fee.Amount)
		}

		notifs, err := env.notifRepo.QueryNotificationsByUserID(ctx, parent.ID, 10)
		if err != nil {
			t.Fatalf("QueryNotificationsByUserID() failed: %v", err)
		}
		if len(notifs) != 1 {
			t.Fatalf("notifications = %d; want 1", len(notifs))
		}
		if notifs[0].Title != "New Fee Added" ||
			notifs[0].Message != "A new fee of R1500.50 for Monthly tuition has been added" {
			t.Errorf("unexpected notification: %q / %q", notifs[0].Title, notifs[0].Message)
		}
	})

	t.Run("rejects zero amounts and unknown students", func(t *testing.T) {
		tests := []httpTest{
			{
				name:     "Zero amount",
				body:     []byte(`{"student_id": 1, "description": "Oops", "amount": "0", "due_date": "2026-10-01"}`),
				wantCode: http.StatusBadRequest,
			},
			{
				name:     "Unknown student",
				body:     []byte(`{"student_id": 999, "description": "Ghost", "amount": "100", "due_date": "2026-10-01"}`),
				wantCode: http.StatusNotFound,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodPost, "/api/fees", env.authCookie(t, admin), tt.body)
				env.app.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
	})
}

func Test_feeApi_setStatus(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent1 := testutil.CreateUser(t, env.usrRepo, "Parent One", "p1@test.cd", "s3cr3t")
	parent2 := testutil.CreateUser(t, env.usrRepo, "Parent Two", "p2@test.cd", "s3cr3t")
	child := testutil.CreateChild(t, env.enrollRepo, parent1.ID, "Amara", "Okafor")
	fee := testutil.CreateFee(t, env.feeRepo, child.ID, "Monthly tuition", decimal.RequireFromString("1500.50"))

	t.Run("another parent may not touch the fee", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/fees/1/status", env.authCookie(t, parent2), []byte(`{"status": "paid"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("parents may only pay", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/fees/1/status", env.authCookie(t, parent1), []byte(`{"status": "overdue"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/fees/1/status", env.authCookie(t, parent1), []byte(`{"status": "settled"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("paying records the payment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/fees/1/status", env.authCookie(t, parent1), []byte(`{"status": "paid"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var paid billing.Fee
		decodeBody(t, rec, &paid)
		if paid.Status != billing.FeePaid {
			t.Errorf("status = %q; want %q", paid.Status, billing.FeePaid)
		}
		if !paid.PaidDate.Valid {
			t.Error("paid_date not set")
		}

		activities, err := env.notifRepo.QueryRecentActivities(ctx, 10)
		if err != nil {
			t.Fatalf("QueryRecentActivities() failed: %v", err)
		}
		if len(activities) != 1 {
			t.Fatalf("activities = %d; want 1", len(activities))
		}
		act := activities[0]
		if act.Type != "payment" || act.Title != "Fee payment received" ||
			act.Description != "Payment of R1500.50 for Monthly tuition has been received" {
			t.Errorf("unexpected activity: %+v", act)
		}
		if act.UserID != fee.ParentID {
			t.Errorf("activity user = %d; want %d", act.UserID, fee.ParentID)
		}
	})
}

func Test_feeApi_remind(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")
	child := testutil.CreateChild(t, env.enrollRepo, parent.ID, "Amara", "Okafor")
	testutil.CreateFee(t, env.feeRepo, child.ID, "Monthly tuition", decimal.RequireFromString("1500.50"))

	t.Run("admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/fees/1/remind", env.authCookie(t, parent))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("sends a reminder message", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/fees/1/remind", env.authCookie(t, admin))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		msgs, err := env.msgSvc.QueryFor(ctx, parent)
		if err != nil {
			t.Fatalf("QueryFor() failed: %v", err)
		}
		if len(msgs) != 1 {
			t.Fatalf("messages = %d; want 1", len(msgs))
		}
		msg := msgs[0]
		if msg.SenderID != admin.ID || msg.ReceiverID != parent.ID || msg.Subject != "Fee Payment Reminder" {
			t.Errorf("unexpected message: %+v", msg)
		}

		// sending also notifies the receiver
		notifs, err := env.notifRepo.QueryNotificationsByUserID(ctx, parent.ID, 10)
		if err != nil {
			t.Fatalf("QueryNotificationsByUserID() failed: %v", err)
		}
		if len(notifs) != 1 || notifs[0].Title != "New Message" {
			t.Fatalf("unexpected notifications: %+v", notifs)
		}
	})
}
