// Package models defines the core domain models for the mutual-aid service.
//
// # Models
//
//   - User: a registered member account
//   - Group: an invitation-only circle of members, owned by its creator
//   - GroupMember: one user's membership in one group
//   - Invite: a single-use, expiring credential to join a group
//   - Request: an errand posted to a group and claimed by another member
//   - UserLimits: per-user quota ceilings
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships are expressed with ID strings
// 2. **Optional timestamps are pointers**: a nil ClaimedAt means "never claimed"
// 3. **Models carry no behavior beyond small state helpers**: rules live in
// the quota, membership and requests packages
package models
