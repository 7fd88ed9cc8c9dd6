package main

import "s3-upload-helper/cmd"

func main() {
	cmd.Execute()
}
