// Package ppcsv streams price paid rows out of the raw headerless csv file
// and exposes the remote dataset as a byte source for the fetcher
package ppcsv
