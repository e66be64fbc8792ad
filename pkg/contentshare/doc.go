// Package contentshare provides the content lifecycle and interaction model of
// a media sharing site: uploads to object storage, dashboard listings, likes,
// comments and view counters.
//
// A single Service orchestrates a Repository (content, likes and comments) and
// an ObjectStorage client. Repository implementations (memory, Postgres via
// pgx, Postgres via gorm) and blob stores (memory, S3, MinIO) live in
// subpackages and are wired together by the config package.
//
// Identity
//
// The service never reads ambient caller state. Every operation that depends
// on who is calling takes the user identifier as an explicit argument; the
// HTTP layer resolves it from the request before calling in.
package contentshare
