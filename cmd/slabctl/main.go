// Command slabctl exercises slabkit allocators and lists from the command line.
package main

func main() {
	execute()
}
