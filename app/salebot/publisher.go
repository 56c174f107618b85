package main

import (
	"fmt"
	"io"

	"github.com/x-xyz/salebot/domain"
	"github.com/x-xyz/salebot/service/console"
	"github.com/x-xyz/salebot/service/discord"
	"github.com/x-xyz/salebot/service/twitter"
)

func newPublisher(cfg *Config, out io.Writer) (domain.Publisher, error) {
	twitterCfg := &twitter.ClientCfg{
		Timeout:        cfg.Publish.Timeout,
		BaseUrl:        cfg.Twitter.Url,
		ConsumerKey:    cfg.Twitter.ConsumerKey,
		ConsumerSecret: cfg.Twitter.ConsumerSecret,
		AccessKey:      cfg.Twitter.AccessKey,
		AccessSecret:   cfg.Twitter.AccessSecret,
		Encoding:       cfg.Twitter.Encoding,
	}

	switch cfg.Publisher {
	case publisherTwitter:
		return twitter.NewStatusesPublisher(twitterCfg), nil
	case publisherTwitterV2:
		return twitter.NewTweetsPublisher(twitterCfg), nil
	case publisherDiscord:
		return discord.NewPublisher(&discord.PublisherCfg{
			BotKey:    cfg.Discord.BotKey,
			ChannelId: cfg.Discord.ChannelId,
		})
	case publisherConsole:
		return console.NewPublisher(out), nil
	}
	return nil, fmt.Errorf("unknown publisher %q", cfg.Publisher)
}
