// Package auth implements the account and token lifecycle for the
// oexchanger forum backend: registration with email verification,
// credential login, opaque bearer sessions, and the password reset
// ledger. The GraphQL layer, entity persistence for communities and
// posts, and email delivery are collaborators reached through the
// interfaces defined here.
package auth
