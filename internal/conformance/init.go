package conformance

import "github.com/st3v3nmw/hiscore/internal/registry"

func init() {
	checklist := &registry.Checklist{
		Name: "High Score Server",
		Summary: `Checks a running score server over HTTP: default seeding, ranking,
validation, scope isolation, durability across restarts and crashes, and
concurrent submissions.`,
	}

	checklist.AddStage("http-api", "GET/SUBMIT with Default Seeding and Validation", HTTPAPI)
	checklist.AddStage("isolation", "Scopes Do Not Share Lists", Isolation)
	checklist.AddStage("persistence", "Lists Survive SIGTERM", Persistence)
	checklist.AddStage("crash-recovery", "Lists Survive SIGKILL", CrashRecovery)
	checklist.AddStage("concurrency", "Concurrent Submissions Are Not Lost", Concurrency)

	registry.RegisterChecklist("hiscore", checklist)

	strict := &registry.Checklist{
		Name:       "High Score Server (strict reads)",
		Summary:    "Checks a server started with --strict, where reads never create lists.",
		ServerArgs: []string{"--strict"},
	}

	strict.AddStage("strict-reads", "Unseen Scopes Return 404 Until Submitted To", StrictReads)

	registry.RegisterChecklist("strict", strict)
}
