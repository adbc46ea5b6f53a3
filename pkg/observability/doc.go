/*
Package observability provides tools for monitoring the joist engine.

It includes lifecycle hooks that log tree activity, Prometheus collectors fed
by the same hooks and a Chain helper to install several hook sets on one editor.
*/
package observability
