package configs

import "github.com/spf13/viper"

// EventsConfig 控制领域事件发布的开关（全局与分主题）.
type EventsConfig struct {
	Enabled bool                `mapstructure:"enabled"` // 总开关
	Media   MediaEventsConfig   `mapstructure:"media"`
	Project ProjectEventsConfig `mapstructure:"project"`
	Contact ContactEventsConfig `mapstructure:"contact"`
}

// MediaEventsConfig 媒体库事件开关.
type MediaEventsConfig struct {
	Uploaded bool `mapstructure:"uploaded"`
	Deleted  bool `mapstructure:"deleted"`
	Moved    bool `mapstructure:"moved"`
	Folder   bool `mapstructure:"folder"`
}

// ProjectEventsConfig 项目目录事件开关.
type ProjectEventsConfig struct {
	Saved   bool `mapstructure:"saved"`
	Deleted bool `mapstructure:"deleted"`
}

// ContactEventsConfig 联系表单事件开关.
type ContactEventsConfig struct {
	Sent bool `mapstructure:"sent"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.media.uploaded", true)
	v.SetDefault("events.media.deleted", true)
	v.SetDefault("events.media.moved", true)
	// 目录事件量小但意义不大，默认关闭
	v.SetDefault("events.media.folder", false)

	v.SetDefault("events.project.saved", true)
	v.SetDefault("events.project.deleted", true)

	v.SetDefault("events.contact.sent", true)
}
