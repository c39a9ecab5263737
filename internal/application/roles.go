package application

import "github.com/ThePuug/claude-man/internal/domain"

const (
	InstructionsFile = "instructions.md"
	ApprovalHookFile = "approval-hook.sh"
)

// RoleProfile is the optional per-role material handed to the agent.
// Instructions are prefixed to the task and written to InstructionsFile.
// ApprovalHook is written, executable, to ApprovalHookFile.
type RoleProfile struct {
	Instructions string
	ApprovalHook string
}

func (p RoleProfile) Sidecars() []domain.Sidecar {
	var sidecars []domain.Sidecar
	if p.Instructions != "" {
		sidecars = append(sidecars, domain.Sidecar{Name: InstructionsFile, Content: p.Instructions})
	}
	if p.ApprovalHook != "" {
		sidecars = append(sidecars, domain.Sidecar{Name: ApprovalHookFile, Content: p.ApprovalHook, Executable: true})
	}
	return sidecars
}

type RolePolicy map[domain.Role]RoleProfile

func (p RolePolicy) Profile(role domain.Role) RoleProfile {
	if p == nil {
		return RoleProfile{}
	}
	return p[role]
}

func DefaultRolePolicy() RolePolicy {
	return RolePolicy{
		domain.RoleManager: {
			Instructions: managerInstructions,
			ApprovalHook: managerApprovalHook,
		},
	}
}

const managerInstructions = `# Manager session

You coordinate other agent sessions through the claude-man CLI.

- Spawn workers with: claude-man spawn --role DEVELOPER --parent "$CLAUDE_MAN_SESSION_ID" "<task>"
- Check on them with: claude-man list --parent "$CLAUDE_MAN_SESSION_ID"
- Read their transcripts with: claude-man logs <SESSION_ID>
- Send follow-ups with: claude-man input <SESSION_ID> "<text>"
- Stop a worker with: claude-man stop <SESSION_ID>

Break the task into independent pieces, delegate them, and report a summary
when every worker has finished.
`

const managerApprovalHook = `#!/bin/sh
# Approval hook for manager sessions. The agent may run this script before
# acting; a non-zero exit denies the request. Edit to taste.
printf '%s\n' "$*" >> "$(dirname "$0")/approvals.log"
exit 0
`
