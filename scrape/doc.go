// Package scrape fetches publication pages and pulls their metadata and
// main text out of the HTML.
//
// HTTPFetcher retries timeouts and server errors with exponential backoff;
// any other failure is returned immediately. Extract walks the parsed
// document with golang.org/x/net/html, and PublicationID derives the stable
// identifier a page is stored under.
package scrape
