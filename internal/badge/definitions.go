package badge

// definition pairs a badge with its earning predicate over the counters.
type definition struct {
	Key    string
	Name   string
	earned func(p *Progress) bool
}

var definitions = []definition{
	{
		Key:    "first_task",
		Name:   "First Task Done",
		earned: func(p *Progress) bool { return p.TasksCredited >= 1 },
	},
	{
		Key:    "ten_tasks",
		Name:   "Ten Tasks Done",
		earned: func(p *Progress) bool { return p.TasksCredited >= 10 },
	},
	{
		Key:    "fifty_tasks",
		Name:   "Fifty Tasks Done",
		earned: func(p *Progress) bool { return p.TasksCredited >= 50 },
	},
	{
		Key:    "xp_collector",
		Name:   "XP Collector",
		earned: func(p *Progress) bool { return p.TotalXPEarned >= 500 },
	},
	{
		Key:    "week_streak",
		Name:   "Seven Day Streak",
		earned: func(p *Progress) bool { return p.StreakDays >= 7 },
	},
	{
		Key:    "first_redemption",
		Name:   "First Redemption",
		earned: func(p *Progress) bool { return p.Redemptions >= 1 },
	},
}
