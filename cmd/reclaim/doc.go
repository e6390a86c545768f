// Command reclaim infers titles and dates for files recovered by carving
// tools and files copies of them into an output tree organized by year and
// month. Run `reclaim config init` to create a configuration file, then
// `reclaim run <dir>` to process a batch.
package main
