// Package metrics registers the agent's prometheus collectors. The /metrics
// endpoint on the local surface serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinclass_notify_poll_cycles_total",
		Help: "Completed notification poll cycles.",
	})
	PollTicksDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinclass_notify_ticks_dropped_total",
		Help: "Timer ticks dropped because a poll cycle was still in flight.",
	})
	PollFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinclass_notify_fetch_failures_total",
		Help: "Poll cycles aborted by a notification fetch failure.",
	})
	NotificationsDisplayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinclass_notifications_displayed_total",
		Help: "Notifications handed to the displayer.",
	})
	MarkReadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinclass_notify_mark_read_failures_total",
		Help: "Failed mark-as-read calls (notification will redeliver).",
	})
	BatchesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinclass_attendance_batches_total",
		Help: "Attendance batches accepted by the backend.",
	})
	StudentCoinsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinclass_student_coins_issued_total",
		Help: "Coins issued to students through attendance batches.",
	})
	TeacherRewardCoins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinclass_teacher_reward_coins_total",
		Help: "Coins self-credited to the teacher after batches.",
	})
)
