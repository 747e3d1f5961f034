// Package internal implements the HTTP host behind the mailkit package.
//
// The host owns routing (chi), request contexts, health endpoints and the
// server runtime. Its runtime runs startup hooks before the listener opens
// and shutdown hooks after the server drains; WithMail plugs the mail
// transport lifecycle into both lists so that the transport is verified
// first and closed last.
package internal
