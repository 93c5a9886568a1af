// Package lognotifier records booking confirmations in the log. It is the
// notifier used when no SMTP server is configured.
package lognotifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/unique-meal/member-portal/internal/domain"
)

type Notifier struct {
	log *logrus.Logger
}

func New(log *logrus.Logger) *Notifier {
	return &Notifier{log: log}
}

func (n *Notifier) BookingConfirmed(ctx context.Context, m domain.Member, b domain.MealBooking) error {
	_ = ctx
	n.log.WithFields(logrus.Fields{
		"member_id":  string(m.ID),
		"booking_id": string(b.ID),
		"meal_name":  b.MealName,
		"meal_date":  b.MealDate.String(),
	}).Info("meal booking confirmed")
	return nil
}
