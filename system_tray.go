package main

import (
	"fmt"
	"sort"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"github.com/wrenlake/med-minder/pkg/models"
	"github.com/wrenlake/med-minder/pkg/recurrence"
)

func (mm *MedMinder) setupSystemTray() {
	mm.updateSystemTrayMenu()
}

// upcoming is a reminder paired with its next occurrence.
type upcoming struct {
	reminder models.Reminder
	at       time.Time
}

func (mm *MedMinder) updateSystemTrayMenu() {
	desk, ok := mm.app.(desktop.App)
	if !ok {
		return
	}

	menuItems := []*fyne.MenuItem{}

	// Show the next few occurrences at the top
	next := mm.upcomingReminders(5)
	if len(next) > 0 {
		headerItem := fyne.NewMenuItem("Coming Up:", nil)
		headerItem.Disabled = true
		menuItems = append(menuItems, headerItem)

		for _, u := range next {
			when := u.at.Format("3:04 PM")
			if !sameDay(u.at, time.Now()) {
				when = u.at.Format("Mon 3:04 PM")
			}
			item := fyne.NewMenuItem(fmt.Sprintf("  %s - %s", when, truncateString(u.reminder.Title, 35)), nil)
			item.Disabled = true
			menuItems = append(menuItems, item)
		}

		menuItems = append(menuItems, fyne.NewMenuItemSeparator())
	}

	menuItems = append(menuItems,
		fyne.NewMenuItem("Reminders", func() {
			mm.showRemindersWindow()
		}),
		fyne.NewMenuItem("Quick Reminder", func() {
			mm.showQuickReminderDialog()
		}),
		fyne.NewMenuItem("Settings", func() {
			mm.showSettingsWindow()
		}),
	)

	menuItems = append(menuItems, fyne.NewMenuItemSeparator())
	menuItems = append(menuItems, fyne.NewMenuItem("Quit", func() {
		mm.quit()
	}))

	menu := fyne.NewMenu("MedMinder", menuItems...)
	desk.SetSystemTrayMenu(menu)
	desk.SetSystemTrayIcon(theme.HistoryIcon())
}

// upcomingReminders returns the next occurrences of all active
// reminders, soonest first, at most limit entries.
func (mm *MedMinder) upcomingReminders(limit int) []upcoming {
	now := time.Now()

	result := []upcoming{}
	for _, r := range mm.store.All() {
		if !r.IsActive {
			continue
		}
		at, ok := recurrence.Next(r, now)
		if !ok {
			continue
		}
		result = append(result, upcoming{reminder: r, at: at})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].at.Before(result[j].at)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// truncateString truncates a string to maxLen characters, adding "..." if needed
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
