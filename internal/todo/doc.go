// Package todo models todo records and owns the todos file.
//
// The todos file (todos.json in the data directory) holds the todos of every
// user; isolation is enforced at query time by the Store, which only ever
// exposes todos owned by the acting session's user:
//
//	{
//	  "schema_version": 1,
//	  "todos": [
//	    {
//	      "id": "6f1c1e8e-3a0b-4b8e-9d7e-1b2f0c3d4e5f",
//	      "owner": "alice",
//	      "title": "Buy milk",
//	      "description": "Semi-skimmed",
//	      "priority": "medium",
//	      "status": "pending",
//	      "due_date": "2024-01-02",
//	      "created_at": "2024-01-01T09:00:00Z",
//	      "updated_at": "2024-01-01T09:00:00Z"
//	    }
//	  ]
//	}
//
// # Priority Values
//
//   - "low"
//   - "medium" (default for new todos)
//   - "high"
//
// # Status Values
//
//   - "pending": not done yet; the only status that produces reminders
//   - "completed": done; completed_at records when
//
// # Persistence
//
// Every mutation rewrites the whole file atomically (see package jsonfile).
// The file is validated against an embedded JSON Schema on load. After a
// successful rewrite the Store hands the full snapshot to its Exporter; export
// errors are logged and never undo the mutation.
package todo
