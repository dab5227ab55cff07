// Package docqa implements session-scoped question answering over uploaded
// PDF files.
//
// Upload stores files and records them on the session. The first Chat on a
// session with files builds a proposition index from every file recorded so
// far and caches it on the session; later chats reuse that index even if
// more files were uploaded since. A Chat on a session without files is
// answered with NoDocumentsAnswer and never reaches a model.
package docqa
