// Package cli implements the AuthKeeper command-line client on top of cobra.
//
// Commands:
//   - register: create an account and print the auth envelope
//   - login: sign in and print the auth envelope
//   - refresh: exchange a refresh token for a new pair
//   - profile: show the account an access token belongs to
//
// Missing emails and passwords are prompted for; passwords are read from the
// terminal without echo.
package cli
