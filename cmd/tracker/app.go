package main

import (
	"alcyxob/healthera/internal/client"
	"alcyxob/healthera/internal/config"
	"alcyxob/healthera/internal/coordinator"
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/progression"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
)

// tracker holds what every command needs once flags and config are resolved.
type tracker struct {
	out   io.Writer
	api   *client.Client
	coord *coordinator.Coordinator
}

func newApp(out io.Writer) *cli.App {
	t := &tracker{out: out}
	return &cli.App{
		Name:   "tracker",
		Usage:  "follow nutrition and fitness programs from the terminal",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: ".", Usage: "directory holding config.yaml"},
			&cli.StringFlag{Name: "base-url", Usage: "API base URL, overrides client.base_url"},
			&cli.StringFlag{Name: "token", EnvVars: []string{"TRACKER_TOKEN"}, Usage: "bearer token, overrides client.token"},
		},
		Before: t.setup,
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "last-name", Required: true},
					&cli.StringFlag{Name: "first-name", Required: true},
					&cli.StringFlag{Name: "phone"},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "birth-date", Usage: "YYYY-MM-DD"},
				},
				Action: t.register,
			},
			{
				Name:  "login",
				Usage: "authenticate and print a token to export as TRACKER_TOKEN",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: t.login,
			},
			{
				Name:   "programs",
				Usage:  "list the program catalog",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "objective", Usage: "weight-loss, mass-gain, maintenance or endurance"}},
				Action: t.programs,
			},
			{
				Name:      "program",
				Usage:     "show the menu and activities of a program",
				ArgsUsage: "<program-id>",
				Action:    t.program,
			},
			{
				Name:   "dishes",
				Usage:  "list the dishes of every program",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "category", Usage: "breakfast, lunch, dinner or snack"}},
				Action: t.dishes,
			},
			{
				Name:      "dish",
				Usage:     "show the recipe of one dish",
				ArgsUsage: "<dish-id>",
				Action:    t.dish,
			},
			{
				Name:      "enroll",
				Usage:     "start a program",
				ArgsUsage: "<program-id>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "start", Usage: "start date YYYY-MM-DD, default today"}},
				Action:    t.enroll,
			},
			{
				Name:   "list",
				Usage:  "list my enrollments with their progression",
				Action: t.list,
			},
			{
				Name:      "show",
				Usage:     "show one enrollment and the record of a date",
				ArgsUsage: "<enrollment-id>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, default today"}},
				Action:    t.show,
			},
			{
				Name:      "preview",
				Usage:     "summarize a selection without saving it",
				ArgsUsage: "<enrollment-id>",
				Flags:     selectionFlags(),
				Action:    t.preview,
			},
			{
				Name:      "submit",
				Usage:     "record the meals eaten and activities done on a date",
				ArgsUsage: "<enrollment-id>",
				Flags:     append(selectionFlags(), &cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, default today"}),
				Action:    t.submit,
			},
			{
				Name:      "adjust",
				Usage:     "quick progression adjust of an active enrollment",
				ArgsUsage: "<enrollment-id>",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "by", Value: 10, Usage: "percentage points to add (10 or 25)"}},
				Action:    t.adjust,
			},
			{
				Name:      "status",
				Usage:     "pause, resume, complete or abandon an enrollment",
				ArgsUsage: "<enrollment-id> <active|paused|completed|abandoned>",
				Action:    t.status,
			},
		},
	}
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntSliceFlag{Name: "meal", Usage: "menu item id, repeatable"},
		&cli.IntSliceFlag{Name: "activity", Usage: "activity id, repeatable"},
	}
}

func (t *tracker) setup(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := c.String("base-url"); v != "" {
		cfg.Client.BaseURL = v
	}
	if v := c.String("token"); v != "" {
		cfg.Client.Token = v
	}
	t.api = client.NewFromConfig(cfg.Client)
	t.coord = coordinator.New(t.api)
	return nil
}

func requireArg(c *cli.Context, n int, name string) (string, error) {
	v := c.Args().Get(n)
	if v == "" {
		return "", fmt.Errorf("missing %s", name)
	}
	return v, nil
}

func (t *tracker) register(c *cli.Context) error {
	user, err := t.api.Register(c.Context, client.Registration{
		LastName:  c.String("last-name"),
		FirstName: c.String("first-name"),
		Phone:     c.String("phone"),
		Email:     c.String("email"),
		Password:  c.String("password"),
		BirthDate: c.String("birth-date"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "registered %s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	return nil
}

func (t *tracker) login(c *cli.Context) error {
	token, err := t.api.Login(c.Context, c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "export TRACKER_TOKEN=%s\n", token)
	return nil
}

func (t *tracker) programs(c *cli.Context) error {
	programs, err := t.api.ListPrograms(c.Context, c.String("objective"))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tOBJECTIVE\tDAYS\tMENU\tACTIVITIES")
	for _, p := range programs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n", p.ID.Hex(), p.Name, p.Objective, p.DurationDays, len(p.MenuItems), len(p.Activities))
	}
	return w.Flush()
}

func (t *tracker) program(c *cli.Context) error {
	id, err := requireArg(c, 0, "program id")
	if err != nil {
		return err
	}
	p, err := t.api.GetProgram(c.Context, id)
	if err != nil {
		return err
	}
	printProgram(t.out, p)
	return nil
}

func printProgram(out io.Writer, p *domain.Program) {
	fmt.Fprintf(out, "%s (%s, %d days)\n", p.Name, p.Objective, p.DurationDays)
	if p.Description != "" {
		fmt.Fprintln(out, p.Description)
	}
	fmt.Fprintln(out, "menu:")
	for _, m := range p.MenuItems {
		fmt.Fprintf(out, "  [%d] %s, %s, %d kcal\n", m.ID, m.Name, m.Category, m.Calories)
	}
	fmt.Fprintln(out, "activities:")
	for _, a := range p.Activities {
		fmt.Fprintf(out, "  [%d] %s, %d min, %d kcal\n", a.ID, a.Name, a.DurationMinutes, a.CaloriesBurned)
	}
	for _, tip := range p.Advice {
		fmt.Fprintf(out, "tip: %s\n", tip)
	}
}

func (t *tracker) dishes(c *cli.Context) error {
	dishes, err := t.api.ListDishes(c.Context, c.String("category"))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tKCAL\tPROGRAM")
	for _, d := range dishes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", d.ID, d.Item.Name, d.Item.Category, d.Item.Calories, d.ProgramName)
	}
	return w.Flush()
}

func (t *tracker) dish(c *cli.Context) error {
	id, err := requireArg(c, 0, "dish id")
	if err != nil {
		return err
	}
	d, err := t.api.GetDish(c.Context, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "%s (%s, %d kcal", d.Item.Name, d.Item.Category, d.Item.Calories)
	if d.Item.PreparationMinutes > 0 {
		fmt.Fprintf(t.out, ", %d min", d.Item.PreparationMinutes)
	}
	fmt.Fprintf(t.out, ") from %s\n", d.ProgramName)
	for _, ing := range d.Item.Ingredients {
		fmt.Fprintf(t.out, "  - %s\n", ing)
	}
	if d.Item.Description != "" {
		fmt.Fprintln(t.out, d.Item.Description)
	}
	return nil
}

func (t *tracker) enroll(c *cli.Context) error {
	id, err := requireArg(c, 0, "program id")
	if err != nil {
		return err
	}
	e, err := t.api.Enroll(c.Context, id, c.String("start"))
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "enrolled: %s (starts %s)\n", e.ID.Hex(), e.StartDate)
	return nil
}

func (t *tracker) list(c *cli.Context) error {
	entries, err := t.coord.LoadList(c.Context)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROGRAM\tSTATUS\tPROGRESS\tADJUST")
	for _, entry := range entries {
		name := "?"
		if entry.Enrollment.Program != nil {
			name = entry.Enrollment.Program.Name
		}
		adjust := "yes"
		if !entry.CanAdjust {
			adjust = entry.BlockedReason
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", entry.Enrollment.ID.Hex(), name, entry.Enrollment.Status, entry.Progress.Summary, adjust)
	}
	return w.Flush()
}

func (t *tracker) show(c *cli.Context) error {
	id, err := requireArg(c, 0, "enrollment id")
	if err != nil {
		return err
	}
	d, err := t.coord.Load(c.Context, id, c.String("date"))
	if err != nil {
		return err
	}
	t.printDetail(d)
	return nil
}

func (t *tracker) printDetail(d *coordinator.Detail) {
	name := "?"
	if d.Enrollment.Program != nil {
		name = d.Enrollment.Program.Name
	}
	fmt.Fprintf(t.out, "%s [%s]\n", name, d.Enrollment.Status)
	fmt.Fprintf(t.out, "progress: %s (%s)\n", d.Progress.Summary, d.Progress.Source)
	day := d.Day.Label
	if d.Day.CaloriesConsumed != nil {
		day = fmt.Sprintf("%s, %d kcal", day, *d.Day.CaloriesConsumed)
	}
	fmt.Fprintf(t.out, "%s: %s\n", d.Date, day)
	if len(d.Day.SelectedMealIDs) > 0 {
		fmt.Fprintf(t.out, "  meals: %s\n", joinIDs(d.Day.SelectedMealIDs))
	}
	if len(d.Day.SelectedActivityIDs) > 0 {
		fmt.Fprintf(t.out, "  activities: %s\n", joinIDs(d.Day.SelectedActivityIDs))
	}
	if !d.CanSubmit {
		fmt.Fprintf(t.out, "recording disabled: %s\n", d.BlockedReason)
	}
}

func (t *tracker) preview(c *cli.Context) error {
	id, err := requireArg(c, 0, "enrollment id")
	if err != nil {
		return err
	}
	e, err := t.api.FetchEnrollment(c.Context, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(t.out, progression.SelectionSummary(e.Program, c.IntSlice("meal"), c.IntSlice("activity")))
	return nil
}

func (t *tracker) submit(c *cli.Context) error {
	id, err := requireArg(c, 0, "enrollment id")
	if err != nil {
		return err
	}
	date := t.coord.Focus(id, c.String("date"))
	rec, err := t.coord.SubmitDay(c.Context, id, date, c.IntSlice("meal"), c.IntSlice("activity"))
	if err != nil {
		if errors.Is(err, coordinator.ErrNothingSelected) {
			return fmt.Errorf("%w: pass --meal or --activity", err)
		}
		return err
	}
	fmt.Fprintf(t.out, "saved %s: %s\n", rec.Date, progression.DayLabel(rec.Status))
	d, err := t.coord.Detail(id, date)
	if err != nil {
		return err
	}
	t.printDetail(d)
	return nil
}

func (t *tracker) adjust(c *cli.Context) error {
	id, err := requireArg(c, 0, "enrollment id")
	if err != nil {
		return err
	}
	e, err := t.coord.AdjustProgression(c.Context, id, c.Int("by"))
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "progression now %d%%\n", e.Progression)
	return nil
}

func (t *tracker) status(c *cli.Context) error {
	id, err := requireArg(c, 0, "enrollment id")
	if err != nil {
		return err
	}
	raw, err := requireArg(c, 1, "status")
	if err != nil {
		return err
	}
	to := domain.ParseEnrollmentStatus(raw)
	if to == domain.EnrollmentUnknown {
		return fmt.Errorf("unknown status %q", raw)
	}
	e, err := t.api.ChangeStatus(c.Context, id, to)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("%s is now %s", e.ID.Hex(), e.Status)
	if e.EndDate != nil {
		line += " (ended " + *e.EndDate + ")"
	}
	fmt.Fprintln(t.out, line)
	return nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
