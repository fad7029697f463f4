// Package cli provides the interactive drive command-line client.
//
// It wires configuration, the API transport, the driver and an interactive
// REPL. Typical flow: load the server configuration (with "still working"
// and "failed" feedback from a phase tracker), then browse and manage items
// relative to a current folder.
//
// Key features:
//   - Browse: ls, cd, tree, breadcrumb, recent, favorites, trash, search
//   - Manage: mkdir, rm, restore
//   - Upload: upload, reupload (with a progress bar on terminals), finalize
//   - Session: config, whoami
//   - Sharing: shares, invite, pick (explorer selection through the relay)
//
// Upload failures are printed with the recovery the server state allows:
// retry, "reupload <id> <path>" for an expired policy, "finalize <id>" when
// the content arrived but was not confirmed, or contacting an administrator.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
