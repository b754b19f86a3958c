// Package board provides the authentication and authorization core of a
// small content sharing backend (posts and comments), plus the HTTP helpers
// used to expose it.
//
// Credentials:
//   - Users register with a unique username and a password. Passwords are
//     stored as bcrypt digests and never leave the package: every outward
//     representation goes through UserView, a projection without a password
//     field.
//
// Tokens and presence:
//   - SignIn issues a signed, expiring JWT carrying the user id. The token is
//     stateless; SignOut does not revoke it.
//   - Each user also carries a SignInStatus flag ("currently online"). It is
//     set by SignIn and cleared by SignOut or by a transport disconnect
//     (HandleDisconnection). The flag is a presence indicator only: request
//     authorization looks at the token, never at the flag.
//
// Ownership:
//   - Authorize applies the "only the author may mutate" rule to any Ownable
//     resource. Posts use it for update and delete.
//
// Activity sinks:
//   - ActivitySink receives sign up, sign in, sign out and disconnect events.
//     Sinks run best effort (errors are logged) so they never block a request.
package board
