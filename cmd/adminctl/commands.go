package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"tausepro/internal/admin/client"
	"tausepro/internal/admin/models"
	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
)

var commands []command

func init() {
	commands = []command{
		{name: "login", summary: "sign in as a super admin", run: (*app).login},
		{name: "logout", summary: "end the admin session", run: (*app).logout},
		{name: "whoami", summary: "show the signed-in admin", auth: true, run: (*app).whoami},
		{name: "tenants", summary: "list tenants (-plan -status -city -industry)", auth: true, run: (*app).tenants},
		{name: "suspend", summary: "suspend a tenant", auth: true, run: (*app).suspend},
		{name: "activate", summary: "reactivate a tenant", auth: true, run: (*app).activate},
		{name: "modules", summary: "list modules (-category -status)", auth: true, run: (*app).modules},
		{name: "toggle-module", summary: "enable or disable a module", auth: true, run: (*app).toggleModule},
		{name: "module-config", summary: "apply a YAML config patch to a module", auth: true, run: (*app).moduleConfig},
		{name: "agents", summary: "list MCP agents (-category -status)", auth: true, run: (*app).agents},
		{name: "delete-agent", summary: "delete an MCP agent", auth: true, run: (*app).deleteAgent},
		{name: "metrics", summary: "show system metrics", auth: true, run: (*app).metrics},
		{name: "usage", summary: "usage by module (-period day|week|month)", auth: true, run: (*app).usage},
	}
}

func (a *app) login(ctx context.Context, fs *flag.FlagSet, args []string) error {
	email := fs.String("email", "", "admin email")
	pw := fs.String("password", "", "password (default $TAUSEPRO_ADMIN_PASSWORD or stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	password, err := a.password(*pw)
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, *email, password); err != nil {
		return err
	}
	a.store.SetCurrentUser(ctx, a.session.State().User)
	return a.whoami(ctx, fs, nil)
}

func (a *app) logout(ctx context.Context, _ *flag.FlagSet, _ []string) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *app) whoami(ctx context.Context, _ *flag.FlagSet, _ []string) error {
	if err := a.session.RefreshUser(ctx); err != nil {
		return err
	}
	user := a.session.State().User
	if user == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "not logged in")
	}
	return a.render(user, func(t *table) {
		t.header("ID", "EMAIL", "NAME", "ROLE")
		t.row(string(user.ID), user.Email, user.Name, string(user.Role))
	})
}

func (a *app) tenants(ctx context.Context, fs *flag.FlagSet, args []string) error {
	fs.String("plan", "", "filter by plan")
	fs.String("status", "", "filter by status")
	fs.String("city", "", "filter by city")
	fs.String("industry", "", "filter by industry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := setFlags(fs)
	a.store.SetTenantFilters(ctx, models.TenantFilterPatch{
		Plan:     patchValue(set, "plan", fs.Lookup("plan").Value.String()),
		Status:   patchValue(set, "status", fs.Lookup("status").Value.String()),
		City:     patchValue(set, "city", fs.Lookup("city").Value.String()),
		Industry: patchValue(set, "industry", fs.Lookup("industry").Value.String()),
	})
	if err := a.store.FetchTenants(ctx); err != nil {
		return fetchError(err, a.store.State().Errors.Tenants)
	}

	tenants := a.store.State().Tenants
	return a.render(tenants, func(t *table) {
		t.header("ID", "NAME", "PLAN", "STATUS", "CITY", "API CALLS", "CREATED")
		for _, tn := range tenants {
			t.row(
				string(tn.ID),
				tn.Name,
				tn.Plan.String(),
				a.status(string(tn.Status)),
				tn.City,
				count(tn.Metrics.APICalls),
				a.since(tn.CreatedAt),
			)
		}
		t.footer(a.tenantSummary())
	})
}

func (a *app) tenantSummary() string {
	byPlan := a.store.TenantsByPlan()
	out := ""
	for _, p := range id.Plans {
		if n := byPlan[p]; n > 0 {
			if out != "" {
				out += "  "
			}
			out += fmt.Sprintf("%s=%d", p, n)
		}
	}
	return out
}

func (a *app) suspend(ctx context.Context, fs *flag.FlagSet, args []string) error {
	reason := fs.String("reason", "", "reason recorded with the suspension")
	raw, err := oneArg(fs, args, "tenant ID")
	if err != nil {
		return err
	}
	tenantID, err := id.ParseTenantID(raw)
	if err != nil {
		return err
	}
	req := models.SuspendRequest{Reason: *reason}
	if err := req.Validate(); err != nil {
		return err
	}
	if err := a.store.SuspendTenant(ctx, tenantID, req.Reason); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "tenant %s suspended\n", tenantID)
	return nil
}

func (a *app) activate(ctx context.Context, fs *flag.FlagSet, args []string) error {
	raw, err := oneArg(fs, args, "tenant ID")
	if err != nil {
		return err
	}
	tenantID, err := id.ParseTenantID(raw)
	if err != nil {
		return err
	}
	if err := a.store.ActivateTenant(ctx, tenantID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "tenant %s activated\n", tenantID)
	return nil
}

func (a *app) modules(ctx context.Context, fs *flag.FlagSet, args []string) error {
	fs.String("category", "", "filter by category")
	fs.String("status", "", "filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := setFlags(fs)
	a.store.SetModuleFilters(ctx, models.CategoryFilterPatch{
		Category: patchValue(set, "category", fs.Lookup("category").Value.String()),
		Status:   patchValue(set, "status", fs.Lookup("status").Value.String()),
	})
	if err := a.store.FetchModules(ctx); err != nil {
		return fetchError(err, a.store.State().Errors.Modules)
	}

	mods := a.store.State().Modules
	return a.render(mods, func(t *table) {
		t.header("ID", "NAME", "CATEGORY", "STATUS", "ENABLED", "VERSION", "TENANTS", "CALLS")
		for _, m := range mods {
			t.row(
				string(m.ID),
				m.Name,
				string(m.Category),
				a.status(string(m.Status)),
				strconv.FormatBool(m.Config.IsEnabled),
				m.Config.Version,
				count(m.Usage.ActiveTenants),
				count(m.Usage.TotalCalls),
			)
		}
	})
}

func (a *app) toggleModule(ctx context.Context, fs *flag.FlagSet, args []string) error {
	enabled := fs.Bool("enabled", true, "enable (true) or disable (false)")
	raw, err := oneArg(fs, args, "module ID")
	if err != nil {
		return err
	}
	moduleID, err := id.ParseModuleID(raw)
	if err != nil {
		return err
	}
	if err := a.store.ToggleModule(ctx, moduleID, *enabled); err != nil {
		return err
	}
	state := "disabled"
	if *enabled {
		state = "enabled"
	}
	fmt.Fprintf(a.out, "module %s %s\n", moduleID, state)
	return nil
}

func (a *app) moduleConfig(ctx context.Context, fs *flag.FlagSet, args []string) error {
	file := fs.String("f", "", "YAML file with the config patch (- for stdin)")
	raw, err := oneArg(fs, args, "module ID")
	if err != nil {
		return err
	}
	moduleID, err := id.ParseModuleID(raw)
	if err != nil {
		return err
	}
	if *file == "" {
		return dErrors.New(dErrors.CodeBadRequest, "-f is required")
	}

	var data []byte
	if *file == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		return fmt.Errorf("read config patch: %w", err)
	}
	var patch models.ModuleConfigPatch
	if err := yaml.Unmarshal(data, &patch); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid config patch")
	}
	if err := a.store.UpdateModuleConfig(ctx, moduleID, patch); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "module %s config updated\n", moduleID)
	return nil
}

func (a *app) agents(ctx context.Context, fs *flag.FlagSet, args []string) error {
	fs.String("category", "", "filter by category")
	fs.String("status", "", "filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := setFlags(fs)
	a.store.SetAgentFilters(ctx, models.CategoryFilterPatch{
		Category: patchValue(set, "category", fs.Lookup("category").Value.String()),
		Status:   patchValue(set, "status", fs.Lookup("status").Value.String()),
	})
	if err := a.store.FetchAgents(ctx); err != nil {
		return fetchError(err, a.store.State().Errors.Agents)
	}

	agents := a.store.State().Agents
	return a.render(agents, func(t *table) {
		t.header("ID", "NAME", "CATEGORY", "STATUS", "MODEL", "TENANTS", "CONVERSATIONS", "LAST USED")
		for _, ag := range agents {
			t.row(
				string(ag.ID),
				ag.Name,
				string(ag.Category),
				a.status(string(ag.Status)),
				ag.Config.Model,
				strconv.Itoa(len(ag.Tenants.Assigned)),
				count(ag.Performance.TotalConversations),
				a.since(ag.Performance.LastUsed),
			)
		}
	})
}

func (a *app) deleteAgent(ctx context.Context, fs *flag.FlagSet, args []string) error {
	raw, err := oneArg(fs, args, "agent ID")
	if err != nil {
		return err
	}
	agentID, err := id.ParseAgentID(raw)
	if err != nil {
		return err
	}
	if err := a.store.DeleteAgent(ctx, agentID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "agent %s deleted\n", agentID)
	return nil
}

func (a *app) metrics(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.store.FetchSystemMetrics(ctx); err != nil {
		return fetchError(err, a.store.State().Errors.Metrics)
	}
	m := a.store.State().SystemMetrics
	if m == nil {
		return dErrors.New(dErrors.CodeNotFound, "no metrics returned")
	}
	return a.render(m, func(t *table) {
		t.header("METRIC", "VALUE")
		t.row("tenants", count(m.Overview.TotalTenants))
		t.row("active tenants", count(m.Overview.ActiveTenants))
		t.row("users", count(m.Overview.TotalUsers))
		t.row("revenue", cop(m.Overview.TotalRevenueCOP))
		t.row("api calls", count(m.Usage.TotalAPICalls))
		t.row("agent conversations", count(m.Usage.TotalAgentConversations))
		t.row("whatsapp messages", count(m.Usage.TotalWhatsAppMessages))
		t.row("uptime", percent(m.Performance.Uptime))
		t.row("error rate", percent(m.Performance.ErrorRate))
		t.row("new tenants this month", count(m.Growth.NewTenantsThisMonth))
		t.row("updated", a.since(m.LastUpdated))
	})
}

func (a *app) usage(ctx context.Context, fs *flag.FlagSet, args []string) error {
	period := fs.String("period", string(client.PeriodMonth), "day, week or month")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p := client.ReportPeriod(*period)
	if !p.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "period must be day, week or month")
	}
	rows, err := a.store.Client().UsageByModule(ctx, p)
	if err != nil {
		return err
	}
	return a.render(rows, func(t *table) {
		t.header("MODULE", "CALLS", "ERRORS", "AVG RESPONSE")
		for _, r := range rows {
			t.row(r.Module, count(r.Calls), count(r.Errors), fmt.Sprintf("%.0fms", r.AvgResponseTime))
		}
	})
}

// fetchError surfaces the store's recorded message with the upstream code.
func fetchError(err error, msg string) error {
	if msg == "" {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, msg+": "+err.Error())
}
