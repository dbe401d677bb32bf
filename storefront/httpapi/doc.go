// Package httpapi exposes the order operations over HTTP with gin.
//
// Identity comes from an optional HS256 bearer token; requests without a token act as guests.
// Route access per role is decided by an embedded casbin policy before any handler runs,
// ownership rules are enforced by the handlers themselves.
//
// Every response uses the envelope {success, message?, data?, erreurs?}.
package httpapi
