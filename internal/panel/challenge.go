package panel

import (
	"fmt"
	"math"
	"time"
)

// daysPerMonth is the mean Gregorian month length.
const daysPerMonth = 30.44

// Challenge is a goal of keeping one install for Years and Months.
type Challenge struct {
	Years  int
	Months int
}

// TotalDays is the challenge length in days.
func (c Challenge) TotalDays() int {
	return 365*c.Years + int(math.Round(float64(c.Months)*daysPerMonth))
}

// ChallengeStatus is the progress of a challenge at a point in time.
type ChallengeStatus struct {
	Installed time.Time
	AgeDays   int
	Percent   int
	Remaining time.Duration
}

// Complete reports whether the target date has passed.
func (s ChallengeStatus) Complete() bool { return s.Remaining <= 0 }

// Status computes progress from the install time to now.
func (c Challenge) Status(installed, now time.Time) ChallengeStatus {
	total := c.TotalDays()
	age := int(now.Sub(installed).Hours() / 24)
	s := ChallengeStatus{
		Installed: installed,
		AgeDays:   age,
		Remaining: installed.AddDate(0, 0, total).Sub(now),
	}
	if total <= 0 {
		s.Percent = 100
		return s
	}
	s.Percent = min(max(int(float64(age)/float64(total)*100), 0), 100)
	return s
}

// Lines renders the status as panel rows plus a progress bar.
func (s ChallengeStatus) Lines() []string {
	items := []Item{
		{Label: "Installed", Value: s.Installed.Format(time.DateOnly)},
		{Label: "Current Age", Value: fmt.Sprintf("%d days", s.AgeDays)},
	}
	if s.Complete() {
		items = append(items, Item{Label: "Status", Value: doneStyle.Render("Challenge Complete!")})
	} else {
		days := int(s.Remaining.Hours()) / 24
		hours := int(s.Remaining.Hours()) % 24
		items = append(items, Item{Label: "Time Left", Value: leftStyle.Render(fmt.Sprintf("%d days, %d hours", days, hours))})
	}
	lines := Rows(items)
	return append(lines, fmt.Sprintf("%3d%% %s", s.Percent, Progress(s.Percent, BarWidth, ChallengeScheme)))
}
