// Package resilience groups the fault-tolerance helpers used by the CMS.
//
//   - circuitbreaker: gobreaker wrappers for the text-generation providers,
//     the object store and the database.
//   - retry: exponential backoff for startup checks only. Editor actions are
//     never retried behind the editor's back.
package resilience
