// Package files locates asset registers on disk for the command line tool.
//
// A Discovery resolves relative paths against its base directory and lists
// the .xlsx workbooks in a folder, skipping the ~$ lock files Excel leaves
// next to open workbooks.
//
//	discovery := files.NewDiscovery("")
//	books, err := discovery.Expand("laporan/")
//	latest, ok := files.GetLatestFile(books)
package files
