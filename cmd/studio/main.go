// Package main 启动 Feya Bloom Studio 后端
package main

import (
	"os"

	"github.com/feyabloom/studio/pkg/cmd"
)

//go:generate swag init -g cmd/studio/main.go -d ../../ -o ../../docs

//	@title			Feya Bloom Studio API
//	@version		0.3.0
//	@description	作品集后端：媒体库浏览与管理、项目目录与内容块、管理员权限以及联系表单转发。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@BasePath	/api/v1

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
