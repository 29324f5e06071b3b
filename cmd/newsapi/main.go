// Command newsapi serves the news REST API and manages its store.
//
//	@title			News API
//	@version		1.0
//	@description	Articles, topics, users and comments of a news site.
//	@BasePath		/api
package main

func main() {
	execute()
}
