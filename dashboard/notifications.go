/*
notifications.go - Deadline warnings and overdue alerts

PURPOSE:
  Produces the notification feed shown on the dashboard and swept by the
  background reminder scheduler. Two kinds exist:

  deadline  The group's payment cycle ends within two days, measured from
            the group's last verified payment.
  overdue   Participants more than two payment cycles behind; the alert
            names the four most overdue.

  Notifications are computed on demand from the payment history, never
  stored; reading the feed twice yields the same result.
*/
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelCebreiro/payFriendly/engine"
)

type NotificationType string

const (
	NotifyDeadline NotificationType = "deadline"
	NotifyOverdue  NotificationType = "overdue"
)

// Notification is one dashboard alert.
type Notification struct {
	ID       string
	Type     NotificationType
	Title    string
	Message  string
	GroupID  engine.GroupID
	Priority string
}

// deadline warnings fire within this many days of the cycle end
const deadlineWindowDays = 2

// maximum names listed in one overdue alert
const overdueAlertNames = 4

// Notifications computes the alert feed across all groups.
func (s *Service) Notifications(ctx context.Context, at time.Time) ([]Notification, error) {
	ref := refOrNow(at)

	groups, err := s.Store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	var notifications []Notification
	for _, group := range groups {
		payments, err := s.Store.Payments(ctx, group.ID)
		if err != nil {
			return nil, err
		}

		// Deadline warning: the next payment is due a full cycle after the
		// group's last verified payment.
		var lastPaid engine.TimePoint
		for _, p := range payments {
			if !p.Verified {
				continue
			}
			d := engine.TimePointOf(p.PaymentDate)
			if lastPaid.IsZero() || d.After(lastPaid) {
				lastPaid = d
			}
		}
		if !lastPaid.IsZero() {
			daysUntilNext := group.Frequency.Days() - engine.DaysBetween(lastPaid, ref)
			if daysUntilNext >= 0 && daysUntilNext <= deadlineWindowDays {
				notifications = append(notifications, Notification{
					ID:       fmt.Sprintf("deadline_%s", group.ID),
					Type:     NotifyDeadline,
					Title:    "Payment due soon",
					Message:  fmt.Sprintf("%d day(s) left until the next payment in %s", daysUntilNext, group.Name),
					GroupID:  group.ID,
					Priority: "high",
				})
			}
		}

		// Overdue alert: anyone more than two cycles behind.
		ranking, err := s.rankGroup(ctx, group, ref)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, payer := range ranking {
			if !payer.IsOverdue(group.Frequency, engine.SeverityNotification) {
				continue
			}
			names = append(names, payer.DisplayName)
			if len(names) == overdueAlertNames {
				break
			}
		}
		if len(names) > 0 {
			notifications = append(notifications, Notification{
				ID:       fmt.Sprintf("overdue_%s", group.ID),
				Type:     NotifyOverdue,
				Title:    "Participants behind on payments",
				Message:  fmt.Sprintf("In %s: %s have been overdue for a while", group.Name, strings.Join(names, ", ")),
				GroupID:  group.ID,
				Priority: "high",
			})
		}
	}

	return notifications, nil
}
