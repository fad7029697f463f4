// Package sdk implements the two popup protocols that let an embedding page
// pick items from, or save files into, the drive.
//
// # Picker
//
// Picker.Open generates a random token and opens the explorer popup with it.
// Two watchers then race: one polls the server relay for the token every
// PollInterval, the other checks whether the popup was closed every
// ClosedCheckInterval. The first to finish wins and the other is cancelled;
// Open only returns once both have stopped, so no relay request is issued
// after the result is known.
//
// The popup side publishes the selection with SelectionRelay.Send.
//
// # Saver
//
// Saver.Open opens the saver popup and exchanges messages with it directly:
// it waits for SAVER_READY from the application origin, answers with
// SAVER_PAYLOAD and resolves on ITEM_SAVED. Messages from any other origin
// are ignored. Closing the popup before ITEM_SAVED resolves as cancelled.
//
// Windows and message delivery are abstracted by Window, WindowOpener and
// Inbox; the host embedding the protocols provides them, typically a
// browser bridge. PrintingOpener covers terminals: it prints the popup
// address, which is enough for the relay-based picker but not for the saver,
// whose messages need a real Inbox.
package sdk
