package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jervi/orca/internal/fiat"
	"github.com/jervi/orca/internal/front50"
	"github.com/jervi/orca/pkg/models"
)

// ManagedServiceAccountSuffix marks service accounts owned by this task.
// Trigger runAsUser values carrying the suffix are managed bindings; anything
// else was chosen by a user and is never touched.
const ManagedServiceAccountSuffix = "@managed-service-account"

const (
	saveAccountBackoffPeriod = time.Second
	saveAccountTimeout       = 30 * time.Second
)

// SaveServiceAccountTask saves a pipeline-scoped service account. The roles
// on the account drive authorization decisions when the pipeline is executed
// from an automated trigger.
type SaveServiceAccountTask struct {
	fiatStatus  fiat.Status
	store       front50.Client
	permissions fiat.PermissionEvaluator
	log         *logrus.Entry
}

// NewSaveServiceAccountTask creates a new SaveServiceAccountTask. A nil store
// means the metadata store is not wired into this process.
func NewSaveServiceAccountTask(fiatStatus fiat.Status, store front50.Client, permissions fiat.PermissionEvaluator, log *logrus.Entry) *SaveServiceAccountTask {
	return &SaveServiceAccountTask{fiatStatus: fiatStatus, store: store, permissions: permissions, log: log}
}

// BackoffPeriod implements RetryableTask.
func (t *SaveServiceAccountTask) BackoffPeriod() time.Duration { return saveAccountBackoffPeriod }

// Timeout implements RetryableTask.
func (t *SaveServiceAccountTask) Timeout() time.Duration { return saveAccountTimeout }

// Execute derives the managed service account for the pipeline carried in the
// stage context, and persists it together with the rewritten pipeline when the
// requested roles differ from what is currently granted. When nothing changed
// the call is a cheap no-op, which keeps retries inexpensive and idempotent.
func (t *SaveServiceAccountTask) Execute(ctx context.Context, stage *Stage) (Result, error) {
	if t.fiatStatus == nil || !t.fiatStatus.IsEnabled() {
		return Result{}, errors.New("permission service is not enabled, cannot save roles")
	}
	if t.store == nil {
		return Result{}, errors.New("metadata store is not enabled, no way to save pipeline; set front50.enabled")
	}

	pipeline, err := stage.DecodePipeline()
	if err != nil {
		return Result{}, err
	}
	if id := stage.StringValue("pipeline.id"); id != "" {
		pipeline.EnsureID(id)
	}

	roles, hasRoles := pipeline.Roles()
	if !hasRoles {
		t.log.Debug("skipping managed service account since roles field is not present")
		return Succeeded(nil), nil
	}

	name := serviceAccountName(pipeline)
	changed, err := t.rolesChanged(ctx, name, roles)
	if err != nil {
		return Result{}, err
	}
	if !changed {
		t.log.Debug("skipping managed service account creation/updating since roles have not changed")
		return Succeeded(map[string]any{"pipeline.serviceAccount": name}), nil
	}

	authorized, err := t.userAuthorized(ctx, stage.TriggerUser, roles)
	if err != nil {
		return Result{}, err
	}
	if !authorized {
		t.log.WithField("user", stage.TriggerUser).Warn("user is not authorized with all roles for pipeline")
		return Terminal(), nil
	}

	account := &models.ServiceAccount{Name: name, MemberOf: roles}
	status, err := t.store.SaveServiceAccount(ctx, account)
	if err != nil {
		return Result{}, err
	}
	if status/100 != 2 {
		t.log.WithField("status", status).Error("saving service account failed")
		return Terminal(), nil
	}

	rebindTriggers(pipeline, name)

	status, err = t.store.SavePipeline(ctx, pipeline)
	if err != nil {
		return Result{}, err
	}
	if status/100 != 2 {
		t.log.WithField("status", status).Error("saving pipeline failed")
		return Terminal(), nil
	}

	return Succeeded(map[string]any{"pipeline.serviceAccount": name}), nil
}

// serviceAccountName returns the explicit serviceAccount override when the
// definition carries one, else the derived managed name.
func serviceAccountName(pipeline models.Pipeline) string {
	if name, ok := pipeline.ServiceAccount(); ok {
		return name
	}
	return strings.ToLower(pipeline.ID()) + ManagedServiceAccountSuffix
}

// rolesChanged reports whether the roles currently granted to the service
// account differ, as a set, from the requested roles. An account unknown to
// the permission service always counts as changed.
func (t *SaveServiceAccountTask) rolesChanged(ctx context.Context, name string, roles []string) (bool, error) {
	permission, err := t.permissions.GetPermission(ctx, name)
	if err != nil {
		return false, err
	}
	if permission == nil {
		return true, nil
	}
	return !equalRoleSets(permission.Roles, roles), nil
}

// userAuthorized enforces that the triggering user may grant every requested
// role. Requesting no roles restricts nothing, so anyone may do it; admins
// may grant anything; everyone else must hold all requested roles themselves.
func (t *SaveServiceAccountTask) userAuthorized(ctx context.Context, user string, roles []string) (bool, error) {
	if user == "" {
		return false, nil
	}
	if len(roles) == 0 {
		return true, nil
	}

	permission, err := t.permissions.GetPermission(ctx, user)
	if err != nil {
		return false, err
	}
	if permission == nil {
		return false, nil
	}
	if permission.Admin {
		return true, nil
	}
	return permission.HasAllRoles(roles), nil
}

// rebindTriggers points automated triggers at the managed service account.
// With no roles requested, managed bindings are removed instead. Triggers
// bound to a user-chosen runAsUser are left untouched either way.
func rebindTriggers(pipeline models.Pipeline, name string) {
	if name == "" {
		return
	}
	triggers := pipeline.Triggers()
	if len(triggers) == 0 {
		return
	}

	roles, _ := pipeline.Roles()
	if len(roles) == 0 {
		for _, trigger := range triggers {
			if runAsUser, _ := trigger["runAsUser"].(string); strings.HasSuffix(runAsUser, ManagedServiceAccountSuffix) && runAsUser != "" {
				delete(trigger, "runAsUser")
			}
		}
		return
	}

	for _, trigger := range triggers {
		runAsUser, ok := trigger["runAsUser"].(string)
		if !ok || strings.HasSuffix(runAsUser, ManagedServiceAccountSuffix) {
			trigger["runAsUser"] = name
		}
	}
}

func equalRoleSets(a, b []string) bool {
	asSet := func(roles []string) map[string]struct{} {
		set := make(map[string]struct{}, len(roles))
		for _, role := range roles {
			set[role] = struct{}{}
		}
		return set
	}

	setA, setB := asSet(a), asSet(b)
	if len(setA) != len(setB) {
		return false
	}
	for role := range setA {
		if _, ok := setB[role]; !ok {
			return false
		}
	}
	return true
}
